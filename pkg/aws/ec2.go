package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/powersched/powersched/internal/models"
	"github.com/powersched/powersched/pkg/utils"
)

// TagKeys names the instance tags the scheduler reads.
type TagKeys struct {
	OnTime        string
	OffTime       string
	DisabledUntil string
	Stakeholders  string
}

// DefaultTagKeys returns the conventional power schedule tag names.
func DefaultTagKeys() TagKeys {
	return TagKeys{
		OnTime:        "PowerScheduleOnTime",
		OffTime:       "PowerScheduleOffTime",
		DisabledUntil: "PowerScheduleDisabledUntil",
		Stakeholders:  "Stakeholders",
	}
}

// EC2Client lists schedulable instances in one region and issues the
// start/stop calls the reconciler decides on.
type EC2Client struct {
	client  *ec2.Client
	region  string
	tagKeys TagKeys
}

// NewEC2Client creates a new EC2Client for the given region.
func NewEC2Client(ctx context.Context, region string, keys TagKeys) (*EC2Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &EC2Client{
		client:  ec2.NewFromConfig(cfg),
		region:  region,
		tagKeys: keys,
	}, nil
}

// Region returns the region this client operates in.
func (c *EC2Client) Region() string {
	return c.region
}

// ListScheduledInstances returns a snapshot of every instance in a
// reconcilable lifecycle state. Instances without schedule tags are
// included; the reconciler decides what to skip.
func (c *EC2Client) ListScheduledInstances(ctx context.Context) ([]models.InstanceSnapshot, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{"running", "stopped", "pending", "stopping"},
			},
		},
	}

	snapshots := []models.InstanceSnapshot{}

	paginator := ec2.NewDescribeInstancesPaginator(c.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying EC2 instances: %w", err)
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				snapshots = append(snapshots, c.snapshot(instance))
			}
		}
	}

	return snapshots, nil
}

func (c *EC2Client) snapshot(instance types.Instance) models.InstanceSnapshot {
	id := aws.ToString(instance.InstanceId)

	// Display name falls back to the instance ID
	name := utils.GetName(instance.Tags)
	if name == "" {
		name = id
	}

	var az string
	if instance.Placement != nil {
		az = aws.ToString(instance.Placement.AvailabilityZone)
	}

	return models.InstanceSnapshot{
		InstanceID:       id,
		Name:             name,
		InstanceType:     string(instance.InstanceType),
		Region:           c.region,
		AvailabilityZone: az,
		State:            instanceState(instance.State),
		OnTimeRaw:        utils.GetTagValue(instance.Tags, c.tagKeys.OnTime),
		OffTimeRaw:       utils.GetTagValue(instance.Tags, c.tagKeys.OffTime),
		DisabledUntilRaw: utils.GetTagValue(instance.Tags, c.tagKeys.DisabledUntil),
		Stakeholders:     utils.SplitList(utils.GetTagValue(instance.Tags, c.tagKeys.Stakeholders)),
	}
}

func instanceState(state *types.InstanceState) models.InstanceState {
	if state == nil {
		return models.StateOther
	}
	switch state.Name {
	case types.InstanceStateNameRunning:
		return models.StateRunning
	case types.InstanceStateNameStopped:
		return models.StateStopped
	case types.InstanceStateNamePending:
		return models.StatePending
	case types.InstanceStateNameStopping:
		return models.StateStopping
	default:
		return models.StateOther
	}
}

// StartInstance issues a start call for the instance.
func (c *EC2Client) StartInstance(ctx context.Context, instanceID string) error {
	_, err := c.client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("error starting instance %s: %w", instanceID, err)
	}
	return nil
}

// StopInstance issues a stop call for the instance.
func (c *EC2Client) StopInstance(ctx context.Context, instanceID string) error {
	_, err := c.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("error stopping instance %s: %w", instanceID, err)
	}
	return nil
}
