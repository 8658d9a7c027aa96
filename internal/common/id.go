package common

import (
	"github.com/google/uuid"
)

// NewAnalysisID generates a unique analysis ID with the "anl_" prefix
// Format: anl_<uuid>
func NewAnalysisID() string {
	return "anl_" + uuid.New().String()
}
