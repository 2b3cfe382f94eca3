package utils

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// GetTagValue returns the value of a tag with the given key
func GetTagValue(tags []types.Tag, key string) string {
	for _, tag := range tags {
		if tag.Key != nil && *tag.Key == key {
			if tag.Value != nil {
				return *tag.Value
			}
			return ""
		}
	}
	return ""
}

// GetName returns the value of the Name tag
func GetName(tags []types.Tag) string {
	return GetTagValue(tags, "Name")
}

// HasTag checks if a resource has a tag with the given key
func HasTag(tags []types.Tag, key string) bool {
	for _, tag := range tags {
		if tag.Key != nil && *tag.Key == key {
			return true
		}
	}
	return false
}

// SplitList splits a comma-separated tag value into its entries,
// trimming whitespace and dropping empty items. Used for the
// Stakeholders tag.
func SplitList(value string) []string {
	var items []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}
