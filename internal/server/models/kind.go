package models

import "strings"

// Kind is the normalised type tag of an entity.
type Kind string

// Kinds an investigator enters and that have enrichment coverage.
const (
	KindIP     Kind = "ip"
	KindDomain Kind = "domain"
	KindURL    Kind = "url"
	KindHash   Kind = "hash"
	KindEmail  Kind = "email"
	KindPhone  Kind = "phone"
)

// Kinds produced by enrichment.
const (
	KindThreat        Kind = "threat"
	KindAnalysis      Kind = "analysis"
	KindVerification  Kind = "verification"
	KindMetadata      Kind = "metadata"
	KindPerson        Kind = "person"
	KindOrganization  Kind = "organization"
	KindNameserver    Kind = "nameserver"
	KindPort          Kind = "port"
	KindScreenshot    Kind = "screenshot"
	KindVulnerability Kind = "vulnerability"
	KindWhois         Kind = "whois"
	KindFilename      Kind = "filename"
	KindSource        Kind = "source"
	KindLocation      Kind = "location"
)

// ParseKind trims and lowercases a free-form kind tag.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}
