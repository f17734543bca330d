package domain

import (
	"fmt"
	"strings"
)

// ProposalStatus tells the presentation layer what happened to a proposal.
type ProposalStatus string

// Proposal statuses.
const (
	ProposalOpen      ProposalStatus = "open"
	ProposalAccepted  ProposalStatus = "accepted"
	ProposalCancelled ProposalStatus = "cancelled"
)

// Chain rendering limits.
const (
	DefaultChainMaxNodes = 20
	DefaultChainMaxChars = 3800
	chainSeparator       = " › "
	chainEllipsis        = "…"
)

// RouteProposal is a route as offered to a user within a session.
type RouteProposal struct {
	// Token identifies the session for follow-up actions.
	Token string

	// Signature is the route's chain signature.
	Signature string

	// NodeIDs is the ordered node chain.
	NodeIDs []int64

	// NodeNames holds display names aligned with NodeIDs.
	NodeNames []string

	// SegmentIDs is the ordered segment chain.
	SegmentIDs []int64

	// LengthM is the total length in meters.
	LengthM int

	// DurationMin is the total duration in minutes.
	DurationMin int

	// Target is what the user asked for.
	Target Target

	// TolerancePercent is the band the proposal was selected from.
	TolerancePercent float64

	// Shown counts the distinct routes presented in this session so far.
	Shown int

	// Status is open while the session is active.
	Status ProposalStatus
}

// LengthKm returns the length in kilometres.
func (p RouteProposal) LengthKm() float64 {
	return float64(p.LengthM) / 1000.0
}

// LengthLabel renders the length, e.g. "2.35 km".
func (p RouteProposal) LengthLabel() string {
	return fmt.Sprintf("%.2f km", p.LengthKm())
}

// DurationLabel renders the duration, e.g. "31 min".
func (p RouteProposal) DurationLabel() string {
	return fmt.Sprintf("%d min", p.DurationMin)
}

// ChainLabel renders the node names with default shortening.
func (p RouteProposal) ChainLabel() string {
	return ShortenChain(p.NodeNames, DefaultChainMaxNodes, DefaultChainMaxChars)
}

// ShortenChain joins names with " › ". Chains longer than maxNodes keep
// the first maxNodes/2 and last names around an ellipsis; output longer than
// maxChars is cut and suffixed with " …".
func ShortenChain(names []string, maxNodes, maxChars int) string {
	if len(names) == 0 {
		return ""
	}

	out := names
	if maxNodes > 0 && len(names) > maxNodes {
		head := maxNodes / 2
		tail := maxNodes - head
		out = make([]string, 0, maxNodes+1)
		out = append(out, names[:head]...)
		out = append(out, chainEllipsis)
		out = append(out, names[len(names)-tail:]...)
	}

	s := strings.Join(out, chainSeparator)
	runes := []rune(s)
	if maxChars > 20 && len(runes) > maxChars {
		s = strings.TrimRight(string(runes[:maxChars-20]), " ") + " " + chainEllipsis
	}
	return s
}
