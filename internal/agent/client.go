package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"booklister/internal"
	"booklister/internal/listing"
)

// ImageBlob is one photograph ready to attach to a model request.
type ImageBlob struct {
	Name string
	MIME string
	Data []byte
}

// Client identifies books from photographs via the Gemini API.
type Client struct {
	models interface {
		GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	}
	agent   AgentConfig
	timeout time.Duration
}

// NewClient builds a Gemini-backed identification client from an agent
// definition. A positive timeout bounds each model request.
func NewClient(ctx context.Context, apiKey string, agent AgentConfig, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{models: client.Models, agent: agent, timeout: timeout}, nil
}

// Identify sends the configured prompts plus the image set to the model and
// returns its text reply. Transient failures are retried with backoff; the
// caller decides whether a final failure skips the item or aborts the run.
func (c *Client) Identify(ctx context.Context, images []ImageBlob) (string, error) {
	if len(images) == 0 {
		return "", errors.New("no images to analyze")
	}

	parts := []*genai.Part{genai.NewPartFromText(c.agent.UserPrompt)}
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIME))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		Temperature:     c.agent.Model.Temperature,
		MaxOutputTokens: c.agent.Model.MaxOutputTokens,
	}
	if c.agent.ResponseMIME != "" {
		cfg.ResponseMIMEType = c.agent.ResponseMIME
	}
	if c.agent.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(c.agent.SystemPrompt, genai.RoleUser)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := c.generate(ctx, contents, cfg)
		if err == nil {
			text := resp.Text()
			if strings.TrimSpace(text) == "" {
				return "", errors.New("no content returned from model")
			}
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	return "", fmt.Errorf("model request failed: %w", lastErr)
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.models.GenerateContent(ctx, c.agent.Model.Type, contents, cfg)
}

// StripCodeFence unwraps a reply the model packaged as a markdown code
// block; anything else passes through unchanged.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ParseReply turns a model reply into a listing payload. Replies that are
// not JSON objects, even after unfencing, fall back to a raw_text wrapper so
// the output is always saved for review.
func ParseReply(text string) internal.Payload {
	payload, err := listing.ParsePayload([]byte(StripCodeFence(text)))
	if err != nil {
		return internal.Payload{"raw_text": text}
	}
	return payload
}

// SaveReply writes a model reply into dir as a timestamped JSON file and
// returns its path.
func SaveReply(dir, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	blob, err := marshalPayload(ParseReply(text))
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	name := fmt.Sprintf("response_%s%06d.json", now.Format("20060102T150405"), now.Nanosecond()/1000)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func marshalPayload(payload internal.Payload) ([]byte, error) {
	return json.MarshalIndent(map[string]any(payload), "", "  ")
}

// CollectImages loads the JPG/JPEG/PNG files in dir, sorted by name so the
// cover shot (renamed -01) leads the sequence.
func CollectImages(dir string) ([]ImageBlob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("image dir %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	blobs := make([]ImageBlob, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Printf("skipping unreadable image %s: %v\n", name, err)
			continue
		}
		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		blobs = append(blobs, ImageBlob{Name: name, MIME: mimeType, Data: data})
	}
	return blobs, nil
}
