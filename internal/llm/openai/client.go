package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	oai "github.com/openai/openai-go/v3"

	"github.com/joseph-ayodele/resume-parser/internal/common"
	"github.com/joseph-ayodele/resume-parser/internal/encoder"
	"github.com/joseph-ayodele/resume-parser/internal/llm"
)

var _ llm.Requester = (*Client)(nil)

// Request implements llm.Requester with a single chat/completions call. Text content goes
// inline in the user message; image content is attached to it as a data URL.
// The first choice's content is returned untouched.
func (c *Client) Request(ctx context.Context, p llm.Prompt, content llm.Content) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	log := common.LoggerFromContext(ctx, c.logger)

	log.Info("llm.request.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(content.Text),
		"image_bytes", len(content.Image),
	)

	params := oai.ChatCompletionNewParams{
		Model:       oai.ChatModel(c.cfg.Model),
		Temperature: oai.Float(float64(c.cfg.Temperature)),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(p.System),
			userMessage(p, content),
		},
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *oai.Error
		if errors.As(err, &apierr) {
			log.Error("llm.request.http_error",
				"req_id", rid,
				"status", apierr.StatusCode,
				"body", apierr.RawJSON(),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return "", common.NewAppError(common.CodeRequestFailed,
				fmt.Sprintf("status %d", apierr.StatusCode), fmt.Errorf("%w: %v", common.ErrRequestFailed, err))
		}
		log.Error("llm.request.transport_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.NewAppError(common.CodeRequestFailed, "transport", fmt.Errorf("%w: %v", common.ErrRequestFailed, err))
	}
	if len(resp.Choices) == 0 {
		log.Error("llm.request.no_choices",
			"req_id", rid, "raw", resp.RawJSON(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.NewAppError(common.CodeRequestFailed, "no choices in response", common.ErrRequestFailed)
	}

	answer := resp.Choices[0].Message.Content
	if c.shape != nil {
		c.shape.Check(common.DocumentFromContext(ctx), answer)
	}

	log.Info("llm.request.ok",
		"req_id", rid,
		"answer_len", len(answer),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return answer, nil
}

func userMessage(p llm.Prompt, content llm.Content) oai.ChatCompletionMessageParamUnion {
	if !content.IsImage() {
		return oai.UserMessage(llm.BuildUserMessage(p, content.Text))
	}
	parts := []oai.ChatCompletionContentPartUnionParam{
		oai.TextContentPart(llm.BuildUserMessage(p, "")),
		oai.ImageContentPart(oai.ChatCompletionContentPartImageImageURLParam{
			URL: encoder.DataURL(content.Image, content.MIME),
		}),
	}
	return oai.UserMessage(parts)
}
