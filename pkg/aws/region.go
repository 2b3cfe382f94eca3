package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
)

// DefaultRegion is used when no region is configured and none can be
// detected from the environment.
const DefaultRegion = "us-west-2"

// DetectRegion determines the region to operate in when none is
// configured: AWS_REGION from the environment first, then the EC2
// instance metadata service (covers in-cluster deployments), then
// DefaultRegion.
func DetectRegion(ctx context.Context) string {
	if region := os.Getenv("AWS_REGION"); region != "" {
		return region
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithEC2IMDSClientEnableState(imds.ClientEnabled),
	)
	if err == nil {
		client := imds.NewFromConfig(cfg)
		if out, err := client.GetRegion(ctx, &imds.GetRegionInput{}); err == nil && out.Region != "" {
			return out.Region
		}
	}

	return DefaultRegion
}

// NewClients creates one EC2 client per region.
func NewClients(ctx context.Context, regions []string, keys TagKeys) ([]*EC2Client, error) {
	clients := make([]*EC2Client, 0, len(regions))
	for _, region := range regions {
		client, err := NewEC2Client(ctx, region, keys)
		if err != nil {
			return nil, fmt.Errorf("error creating EC2 client for region %s: %w", region, err)
		}
		clients = append(clients, client)
	}
	return clients, nil
}
