// Package provision manages the lifecycle of the warehouse API integration
// and its external functions.
//
// Lifecycle events arrive from infrastructure orchestration with
// at-least-once delivery, so every path must tolerate replays: creates use
// CREATE OR REPLACE, deletes treat "already gone" as success.
package provision

import (
	"errors"
	"fmt"
)

// RequestType is the lifecycle action requested by the orchestrator.
type RequestType string

const (
	RequestCreate RequestType = "Create"
	RequestUpdate RequestType = "Update"
	RequestDelete RequestType = "Delete"
)

// ResourceProperties carries the desired state for the integration.
type ResourceProperties struct {
	IntegrationName string `json:"integrationName"`
	APIAwsRoleARN   string `json:"apiAwsRoleArn"`
	APIBaseURL      string `json:"apiBaseUrl"`
}

// Event is one provisioning lifecycle event. PhysicalResourceID identifies
// the currently provisioned integration on Update and Delete.
type Event struct {
	RequestType        RequestType        `json:"RequestType"`
	ResourceProperties ResourceProperties `json:"ResourceProperties"`
	PhysicalResourceID string             `json:"PhysicalResourceId,omitempty"`
}

// IntegrationAttributes are warehouse-assigned identity attributes, read back
// after create/update. The orchestrator needs them to complete the IAM trust
// relationship on its side.
type IntegrationAttributes struct {
	APIAwsIamUserARN string `json:"apiAwsIamUserArn"`
	APIAwsExternalID string `json:"apiAwsExternalId"`
}

// Response reports the reconciled identity. Data is nil after Delete.
type Response struct {
	PhysicalResourceID string                 `json:"PhysicalResourceId,omitempty"`
	Data               *IntegrationAttributes `json:"Data,omitempty"`
}

// Validate checks the event is actionable before any statement runs.
func (e Event) Validate() error {
	switch e.RequestType {
	case RequestCreate, RequestUpdate, RequestDelete:
	default:
		return fmt.Errorf("unsupported request type %q", e.RequestType)
	}
	if e.RequestType != RequestDelete {
		if e.ResourceProperties.IntegrationName == "" {
			return errors.New("integrationName is required")
		}
		if e.ResourceProperties.APIAwsRoleARN == "" {
			return errors.New("apiAwsRoleArn is required")
		}
		if e.ResourceProperties.APIBaseURL == "" {
			return errors.New("apiBaseUrl is required")
		}
	}
	if e.RequestType == RequestDelete && e.PhysicalResourceID == "" && e.ResourceProperties.IntegrationName == "" {
		return errors.New("delete event names no integration")
	}
	return nil
}

// ErrObjectNotFound marks warehouse errors meaning the target object does not
// exist. The warehouse adapter wraps matching driver errors with it so
// teardown paths can treat them as success.
var ErrObjectNotFound = errors.New("object does not exist or is not authorized")
