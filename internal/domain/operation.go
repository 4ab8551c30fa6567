package domain

// VideoRequest is the submission sent to the remote video service.
type VideoRequest struct {
	Model          string
	Prompt         string
	AspectRatio    AspectRatio
	Resolution     Resolution
	SafetyPolicy   SafetyPolicy
	NegativePrompt string
	NumberOfVideos int
}

// Operation is the handle for an in-flight remote generation job.
type Operation struct {
	Name            string
	Done            bool
	VideoURIs       []string
	ErrorMessage    string
	FilteredReasons []string
}

// FirstVideoURI returns the URI of the first generated video, if any.
func (o Operation) FirstVideoURI() string {
	for _, uri := range o.VideoURIs {
		if uri != "" {
			return uri
		}
	}
	return ""
}

// Failed reports whether the operation completed with an error payload.
func (o Operation) Failed() bool {
	return o.Done && o.ErrorMessage != ""
}
