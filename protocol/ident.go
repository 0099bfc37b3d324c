package protocol

import (
	"regexp"
	"strings"
)

// Wire format constants for the line-oriented scanner protocol.
// Every request is ASCII text followed by a single CR; every response is
// read up to the next CR.
const (
	Terminator byte = 0x0D

	// CmdModelProbe asks a Uniden-style scanner for its model code.
	CmdModelProbe = "MDL"
	// CmdWhoAmI asks an AOR receiver to identify itself.
	CmdWhoAmI = "WI"

	// AORIdentity is the fixed reply an AR-DV1 gives to CmdWhoAmI.
	AORIdentity = "AR-DV1"
)

// mdlPattern matches a Uniden model response: the literal "MDL", a comma,
// then an alphanumeric payload (commas allowed inside the payload).
// Anchored at both ends; trailing content disqualifies the response.
var mdlPattern = regexp.MustCompile(`^MDL,([A-Za-z0-9,]+)$`)

// ParseModelResponse extracts the model code from a Uniden MDL response.
// Returns ("", false) if the response does not match the grammar.
func ParseModelResponse(response string) (string, bool) {
	m := mdlPattern.FindStringSubmatch(response)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsAORIdentity reports whether a WI response identifies an AR-DV1.
// Exact equality after trimming, not a pattern match.
func IsAORIdentity(response string) bool {
	return strings.TrimSpace(response) == AORIdentity
}
