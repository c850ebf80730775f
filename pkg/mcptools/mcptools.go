// Package mcptools exposes the model gateway as Model Context Protocol tools so
// agent hosts can ask atelier for styling advice directly.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/gateway"
	"github.com/papercomputeco/atelier/pkg/logger"
)

// Version is reported in the MCP implementation info.
const Version = "v0.1.0"

// Responder is the gateway surface the tools call.
type Responder interface {
	Respond(ctx context.Context, prompt, priorContext string) (gateway.Result, error)
	RespondToImage(ctx context.Context, imagePath, prompt string) (gateway.Result, error)
}

// RespondInput is the input of the respond tool.
type RespondInput struct {
	Prompt  string `json:"prompt" jsonschema:"the fashion question to ask"`
	Context string `json:"context,omitempty" jsonschema:"optional prior conversation context prepended to the question"`
}

// RespondToImageInput is the input of the respond_to_image tool.
type RespondToImageInput struct {
	ImagePath string `json:"image_path" jsonschema:"path to a readable image file on the server"`
	Prompt    string `json:"prompt" jsonschema:"what to analyze in the image"`
}

// ReplyOutput is the structured output of both tools.
type ReplyOutput struct {
	Text string `json:"text"`
}

// Tools implements the tool handlers.
type Tools struct {
	responder Responder
	logger    *zap.Logger
}

// NewTools creates the tool handlers.
func NewTools(responder Responder, logger *zap.Logger) *Tools {
	return &Tools{responder: responder, logger: logger}
}

// NewServer returns an MCP server with the respond and respond_to_image tools.
func NewServer(responder Responder, logger *zap.Logger) *mcp.Server {
	t := NewTools(responder, logger)

	server := mcp.NewServer(&mcp.Implementation{Name: "atelier", Version: Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "respond",
		Description: "Ask the fashion designer model a question and get its full reply.",
	}, t.Respond)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "respond_to_image",
		Description: "Analyze a fashion image: describe the clothing and suggest matching outfits.",
	}, t.RespondToImage)

	return server
}

// Respond handles the respond tool.
func (t *Tools) Respond(ctx context.Context, _ *mcp.CallToolRequest, in RespondInput) (*mcp.CallToolResult, ReplyOutput, error) {
	t.logger.Debug("mcp respond", zap.String("prompt_preview", logger.Truncate(in.Prompt, 50)))

	result, err := t.responder.Respond(ctx, in.Prompt, in.Context)
	if err != nil {
		return nil, ReplyOutput{}, err
	}
	return reply(result)
}

// RespondToImage handles the respond_to_image tool.
func (t *Tools) RespondToImage(ctx context.Context, _ *mcp.CallToolRequest, in RespondToImageInput) (*mcp.CallToolResult, ReplyOutput, error) {
	t.logger.Debug("mcp respond_to_image", zap.String("path", in.ImagePath))

	result, err := t.responder.RespondToImage(ctx, in.ImagePath, in.Prompt)
	if err != nil {
		return nil, ReplyOutput{}, err
	}
	return reply(result)
}

func reply(result gateway.Result) (*mcp.CallToolResult, ReplyOutput, error) {
	var out ReplyOutput
	if result.Text != nil {
		out.Text = *result.Text
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: out.Text}},
	}, out, nil
}
