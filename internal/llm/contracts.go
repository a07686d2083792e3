package llm

import (
	"context"

	"github.com/joseph-ayodele/resume-parser/internal/entity"
)

// Prompt is the fixed instruction set sent with every document of a run.
type Prompt struct {
	System   string
	User     string
	Skeleton []byte // JSON template the answer must follow
}

// Content is what a document contributes to the request: text, or an image.
type Content struct {
	Text  string
	Image []byte
	MIME  string
}

func (c Content) IsImage() bool { return len(c.Image) > 0 }

// ContentFromExtraction converts a successful extraction into request content.
func ContentFromExtraction(e entity.Extraction) Content {
	if e.IsImage() {
		return Content{Image: e.Image, MIME: e.MIME}
	}
	return Content{Text: e.Text}
}

// Requester is the pipeline's view of the language-model service: one call,
// one outbound request, the raw answer text back.
type Requester interface {
	Request(ctx context.Context, p Prompt, c Content) (string, error)
}
