package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Warehouse executes provisioning statements against the warehouse SQL
// interface. Exec and DescribeIntegration wrap "object does not exist"
// driver errors with ErrObjectNotFound.
type Warehouse interface {
	Exec(ctx context.Context, stmt string) error
	DescribeIntegration(ctx context.Context, name string) (IntegrationAttributes, error)
}

// Reconciler applies lifecycle events to the warehouse.
type Reconciler struct {
	warehouse     Warehouse
	grabSupported bool
	logger        *slog.Logger
}

// NewReconciler creates a reconciler. grabSupported fixes whether the Grab
// function pair is part of the deployment.
func NewReconciler(warehouse Warehouse, grabSupported bool, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		warehouse:     warehouse,
		grabSupported: grabSupported,
		logger:        logger,
	}
}

// Apply runs one lifecycle event to completion and returns the resulting
// identity.
func (r *Reconciler) Apply(ctx context.Context, event Event) (Response, error) {
	if err := event.Validate(); err != nil {
		return Response{}, fmt.Errorf("invalid %s event: %w", event.RequestType, err)
	}

	r.logger.Info("applying lifecycle event",
		"request_type", string(event.RequestType),
		"integration", event.ResourceProperties.IntegrationName,
		"physical_id", event.PhysicalResourceID,
	)

	switch event.RequestType {
	case RequestCreate:
		return r.create(ctx, event.ResourceProperties)
	case RequestUpdate:
		return r.update(ctx, event)
	case RequestDelete:
		return r.delete(ctx, event)
	}
	return Response{}, fmt.Errorf("unsupported request type %q", event.RequestType)
}

// create provisions the integration, reads back its warehouse-assigned
// attributes, and registers the external functions. A failed describe fails
// the whole create: a created-but-undescribed integration must not be
// reported as success, because the orchestrator would then lack the
// attributes needed to finish the trust relationship.
func (r *Reconciler) create(ctx context.Context, props ResourceProperties) (Response, error) {
	if err := r.warehouse.Exec(ctx, createIntegrationStmt(props.IntegrationName, props.APIAwsRoleARN, props.APIBaseURL)); err != nil {
		return Response{}, fmt.Errorf("create integration %s: %w", props.IntegrationName, err)
	}

	attrs, err := r.warehouse.DescribeIntegration(ctx, props.IntegrationName)
	if err != nil {
		return Response{}, fmt.Errorf("describe integration %s after create: %w", props.IntegrationName, err)
	}

	if err := r.createFunctions(ctx, props); err != nil {
		return Response{}, err
	}

	return Response{
		PhysicalResourceID: props.IntegrationName,
		Data:               &attrs,
	}, nil
}

// update reconciles the integration name change. A renamed integration is a
// destructive replace: drop the old identity, then run the full create path
// under the new name. An unchanged name is describe-and-return; role or
// prefix drift on an existing integration is not reconciled in place. The
// external functions are always dropped and recreated so they bind the
// current base URL.
func (r *Reconciler) update(ctx context.Context, event Event) (Response, error) {
	props := event.ResourceProperties

	if event.PhysicalResourceID != "" && event.PhysicalResourceID != props.IntegrationName {
		r.logger.Info("integration renamed, replacing",
			"old", event.PhysicalResourceID,
			"new", props.IntegrationName,
		)
		if err := r.warehouse.Exec(ctx, dropIntegrationStmt(event.PhysicalResourceID)); err != nil && !errors.Is(err, ErrObjectNotFound) {
			return Response{}, fmt.Errorf("drop replaced integration %s: %w", event.PhysicalResourceID, err)
		}
		return r.create(ctx, props)
	}

	attrs, err := r.warehouse.DescribeIntegration(ctx, props.IntegrationName)
	if err != nil {
		return Response{}, fmt.Errorf("describe integration %s: %w", props.IntegrationName, err)
	}

	if err := r.dropFunctions(ctx); err != nil {
		return Response{}, err
	}
	if err := r.createFunctions(ctx, props); err != nil {
		return Response{}, err
	}

	return Response{
		PhysicalResourceID: props.IntegrationName,
		Data:               &attrs,
	}, nil
}

// delete tears down the integration and functions. Absent objects count as
// success so replayed delete events converge instead of failing.
func (r *Reconciler) delete(ctx context.Context, event Event) (Response, error) {
	name := event.PhysicalResourceID
	if name == "" {
		name = event.ResourceProperties.IntegrationName
	}

	if err := r.warehouse.Exec(ctx, dropIntegrationStmt(name)); err != nil {
		if !errors.Is(err, ErrObjectNotFound) {
			return Response{}, fmt.Errorf("drop integration %s: %w", name, err)
		}
		r.logger.Info("integration already absent", "integration", name)
	}

	if err := r.dropFunctions(ctx); err != nil {
		return Response{}, err
	}

	return Response{PhysicalResourceID: name}, nil
}

func (r *Reconciler) createFunctions(ctx context.Context, props ResourceProperties) error {
	for _, stmt := range createFunctionStmts(props.IntegrationName, props.APIBaseURL, r.grabSupported) {
		if err := r.warehouse.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create external function: %w", err)
		}
	}
	return nil
}

func (r *Reconciler) dropFunctions(ctx context.Context) error {
	for _, stmt := range dropFunctionStmts(r.grabSupported) {
		if err := r.warehouse.Exec(ctx, stmt); err != nil && !errors.Is(err, ErrObjectNotFound) {
			return fmt.Errorf("drop external function: %w", err)
		}
	}
	return nil
}
