package assignment

import (
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrProofArtifactIsRequired is returned when a proof carries neither a photo
// nor a signature. Notes alone do not prove a handoff.
var ErrProofArtifactIsRequired = errs.NewValueIsRequiredError("proof requires a photo or a signature")

// ErrProofIsNotConstructed is returned when using an improperly initialized Proof.
var ErrProofIsNotConstructed = errs.NewValueIsRequiredError("Proof must be created via NewProof constructor")

// Proof is the proof-of-delivery artifact attached to a delivered assignment:
// a photo URL, a signature URL, and free-form notes. At least one of photo or
// signature must be present. For external providers the artifact may arrive
// after the delivered transition; until then the assignment carries no proof.
type Proof struct { //nolint:recvcheck //using for validation
	photoURL     string
	signatureURL string
	notes        string
	guard        guard.ConstructorGuard
}

// NewProof creates a validated proof-of-delivery artifact.
// photoURL and signatureURL may each be empty, but not both; notes are optional.
func NewProof(photoURL, signatureURL, notes string) (Proof, error) {
	if photoURL == "" && signatureURL == "" {
		return Proof{}, ErrProofArtifactIsRequired
	}

	return Proof{
		photoURL:     photoURL,
		signatureURL: signatureURL,
		notes:        notes,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate checks that the Proof was created through NewProof.
func (p Proof) Validate() error {
	return p.guard.Validate(ErrProofIsNotConstructed)
}

// PhotoURL returns the delivery photo URL, empty when absent.
func (p Proof) PhotoURL() string {
	return p.photoURL
}

// SignatureURL returns the customer signature URL, empty when absent.
func (p Proof) SignatureURL() string {
	return p.signatureURL
}

// Notes returns free-form courier notes, empty when absent.
func (p Proof) Notes() string {
	return p.notes
}
