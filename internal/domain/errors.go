package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNetworkMismatch is returned when the RPC endpoint reports a different chain than configured
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrInvalidComponent is returned when a component declaration is malformed
	ErrInvalidComponent = errors.New("invalid component")

	// ErrDuplicateRecord is returned when a component is recorded twice in one manifest
	ErrDuplicateRecord = errors.New("component already recorded")

	// ErrCyclicDependency is matched by CyclicDependencyError
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrDeploymentRejected is matched by DeploymentRejectedError
	ErrDeploymentRejected = errors.New("deployment rejected")

	// ErrManifestNotFound is matched by ManifestNotFoundError
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrUnresolvedReference is matched by UnresolvedReferenceError
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrVerificationFailed is matched by VerificationFailedError
	ErrVerificationFailed = errors.New("verification failed")

	// ErrUnknownComponent is matched by UnknownComponentError
	ErrUnknownComponent = errors.New("unknown component")

	// ErrDeployCancelled is returned when the operator declines the deploy prompt
	ErrDeployCancelled = errors.New("deployment cancelled")
)

// CyclicDependencyError names the components that could not be ordered.
type CyclicDependencyError struct {
	Components []string
}

func (e CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency detected involving components: %s", strings.Join(e.Components, ", "))
}

func (e CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}

// DeploymentRejectedError wraps the failure of a single component's deploy call.
type DeploymentRejectedError struct {
	Component string
	Err       error
}

func (e DeploymentRejectedError) Error() string {
	return fmt.Sprintf("deployment of %s rejected: %v", e.Component, e.Err)
}

func (e DeploymentRejectedError) Is(target error) bool {
	return target == ErrDeploymentRejected
}

func (e DeploymentRejectedError) Unwrap() error {
	return e.Err
}

// ManifestNotFoundError is returned when no deploy run has been recorded for a network.
type ManifestNotFoundError struct {
	Network string
}

func (e ManifestNotFoundError) Error() string {
	return fmt.Sprintf("no deployment manifest found for network %q", e.Network)
}

func (e ManifestNotFoundError) Is(target error) bool {
	return target == ErrManifestNotFound
}

// UnresolvedReferenceError is returned when a component references an address
// that is not present in the manifest.
type UnresolvedReferenceError struct {
	Component string
	Reference string
}

func (e UnresolvedReferenceError) Error() string {
	if e.Component == e.Reference {
		return fmt.Sprintf("%s has no address in the manifest", e.Component)
	}
	return fmt.Sprintf("%s references %s, which has no address in the manifest", e.Component, e.Reference)
}

func (e UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}

// VerificationFailedError carries the explorer's reason for rejecting one component.
type VerificationFailedError struct {
	Component string
	Reason    string
}

func (e VerificationFailedError) Error() string {
	return fmt.Sprintf("verification of %s failed: %s", e.Component, e.Reason)
}

func (e VerificationFailedError) Is(target error) bool {
	return target == ErrVerificationFailed
}

// UnknownComponentError is returned when a name is not part of the catalogue.
type UnknownComponentError struct {
	Name        string
	Suggestions []string
}

func (e UnknownComponentError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown component %q", e.Name)
	}
	return fmt.Sprintf("unknown component %q (did you mean: %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e UnknownComponentError) Is(target error) bool {
	return target == ErrUnknownComponent
}
