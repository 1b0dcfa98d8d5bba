package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsbedrock "github.com/aws/aws-sdk-go-v2/service/bedrock"
)

// ModelListAPI is the slice of the Bedrock control-plane client used by
// Catalog. The concrete *bedrock.Client satisfies it.
type ModelListAPI interface {
	ListFoundationModels(ctx context.Context, params *awsbedrock.ListFoundationModelsInput, optFns ...func(*awsbedrock.Options)) (*awsbedrock.ListFoundationModelsOutput, error)
}

// ModelSummary describes one available foundation model.
type ModelSummary struct {
	ID       string
	Name     string
	Provider string
}

// Catalog lists the foundation models available to the account.
type Catalog struct {
	client ModelListAPI
}

// NewCatalog resolves AWS configuration and returns a Catalog.
func NewCatalog(ctx context.Context, region string) (*Catalog, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}

	return NewCatalogFromClient(awsbedrock.NewFromConfig(cfg)), nil
}

// NewCatalogFromClient builds a Catalog around an existing client.
func NewCatalogFromClient(client ModelListAPI) *Catalog {
	return &Catalog{client: client}
}

// ListModels returns the available foundation models in the order the
// service reports them.
func (c *Catalog) ListModels(ctx context.Context) ([]ModelSummary, error) {
	out, err := c.client.ListFoundationModels(ctx, &awsbedrock.ListFoundationModelsInput{})
	if err != nil {
		return nil, fmt.Errorf("bedrock: list foundation models: %w", err)
	}

	models := make([]ModelSummary, 0, len(out.ModelSummaries))
	for _, m := range out.ModelSummaries {
		models = append(models, ModelSummary{
			ID:       aws.ToString(m.ModelId),
			Name:     aws.ToString(m.ModelName),
			Provider: aws.ToString(m.ProviderName),
		})
	}

	return models, nil
}
