// Package sqlinline holds every SQL statement the service runs. Each one
// starts with a `--sql <uuid>` audit marker checked by tools/sqllint and
// enforced at runtime by infra.SQLRunner.
package sqlinline

const QEnsureGenerationsTable = `--sql 3b9e2f4c-8d1a-4c6e-9f2b-7a5d0e1c4b83
create table if not exists generations (
  id uuid primary key,
  model text not null,
  prompt text not null,
  options jsonb not null default '{}'::jsonb,
  status text not null,
  operation_name text not null default '',
  error_message text not null default '',
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
create index if not exists generations_created_at_idx on generations (created_at desc);
`

const QInsertGeneration = `--sql 8f2c6a1e-4b7d-4e0a-b3c9-51d8e6f7a902
insert into generations (id, model, prompt, options, status, created_at, updated_at)
values ($1::uuid, $2, $3, $4::jsonb, $5, $6, $6);
`

const QFinishGeneration = `--sql c4d7e9a2-1f3b-4a58-8e6c-9b0d2f5a7e14
update generations
set status = $2,
    operation_name = $3,
    error_message = $4,
    updated_at = now()
where id = $1::uuid;
`

const QListRecentGenerations = `--sql 5e1a9c3d-7b2f-4d86-a0e4-c8f6b3d9e257
select id::text, model, prompt, options, status, operation_name, error_message, created_at, updated_at
from generations
order by created_at desc
limit $1;
`
