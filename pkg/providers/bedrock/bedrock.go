// Package bedrock provides adapters for AWS Bedrock: a Completer over the
// runtime InvokeModel API speaking the Anthropic Messages schema, a legacy
// prompt/completion text generator, a foundation-model catalog, and a text
// embedder.
package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Default model ids. Callers override them per adapter.
const (
	DefaultModel           = "anthropic.claude-3-sonnet-20240229-v1:0"
	DefaultCompletionModel = "anthropic.claude-instant-v1"
	DefaultEmbeddingModel  = "amazon.titan-embed-text-v1"
)

// anthropicVersion is the fixed version tag Bedrock requires in the body of
// Anthropic-model invocations (the model id travels on the invoke call).
const anthropicVersion = "bedrock-2023-05-31"

const jsonContentType = "application/json"

// InvokeAPI is the slice of the Bedrock runtime client used here. The
// concrete *bedrockruntime.Client satisfies it.
type InvokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// loadConfig resolves AWS credentials and region through the SDK's default
// chain (env, shared config, instance metadata).
func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("bedrock: load aws config: %w", err)
	}

	return cfg, nil
}

// invoke marshals nothing, sends a prepared JSON body to the given model,
// and returns the raw response body.
func invoke(ctx context.Context, client InvokeAPI, modelID string, body []byte) ([]byte, error) {
	out, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String(jsonContentType),
		Accept:      aws.String(jsonContentType),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock: invoke %s: %w", modelID, err)
	}

	return out.Body, nil
}
