package constants

import "strings"

// Role is the canonical account role attached to an uploaded profile.
type Role string

const (
	RoleJobSeeker  Role = "job_seeker"
	RoleEmployer   Role = "employer"
	RoleUnassigned Role = "unassigned"
)

// NormalizeRole maps the many role spellings seen in upload metadata onto the
// canonical values. Unknown labels fall back to job_seeker.
func NormalizeRole(input string) Role {
	if input == "" {
		return RoleJobSeeker
	}
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	synonyms := map[string]Role{
		"jobseeker":      RoleJobSeeker,
		"job_seeker":     RoleJobSeeker,
		"seeker":         RoleJobSeeker,
		"candidate":      RoleJobSeeker,
		"recruiter":      RoleEmployer,
		"hr":             RoleEmployer,
		"company":        RoleEmployer,
		"employer":       RoleEmployer,
		"hiring_manager": RoleEmployer,
		"unassigned":     RoleUnassigned,
	}
	if r, ok := synonyms[normalized]; ok {
		return r
	}
	return RoleJobSeeker
}
