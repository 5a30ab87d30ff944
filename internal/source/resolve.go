package source

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pawkit/pawx/internal/manifest"
)

// ParseRequest splits "vendor/name:constraint" into its parts.
func ParseRequest(request string) Request {
	name, constraint, _ := strings.Cut(strings.TrimSpace(request), ":")
	return Request{
		Name:       strings.ToLower(strings.TrimSpace(name)),
		Constraint: strings.TrimSpace(constraint),
	}
}

// Resolve finds the highest version of the requested package that satisfies
// its constraint. The chosen manifest must pass schema validation.
func Resolve(request string, sources []Source) (*Candidate, error) {
	return resolve(request, func() ([]*Candidate, error) {
		return Discover(sources)
	})
}

// ResolveCached is Resolve backed by the discovery index at indexPath.
func ResolveCached(request string, sources []Source, indexPath string) (*Candidate, error) {
	return resolve(request, func() ([]*Candidate, error) {
		return DiscoverCached(sources, indexPath)
	})
}

func resolve(request string, discover func() ([]*Candidate, error)) (*Candidate, error) {
	req := ParseRequest(request)
	if req.Name == "" {
		return nil, fmt.Errorf("empty package request %q", request)
	}

	constraint := req.Constraint
	if constraint == "" {
		constraint = "*"
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q for %s: %w", req.Constraint, req.Name, err)
	}

	all, err := discover()
	if err != nil {
		return nil, err
	}
	candidates := named(req.Name, all)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", req.Name, ErrNotFound)
	}

	// Candidates are sorted newest first.
	for _, cand := range candidates {
		v, err := manifest.ParseVersion(cand.Package.Version)
		if err != nil || !c.Check(v) {
			continue
		}
		if err := validate(cand); err != nil {
			return nil, err
		}
		return cand, nil
	}
	return nil, fmt.Errorf("no version of %s satisfies %q: %w", req.Name, constraint, ErrNotFound)
}

// validate checks a candidate's manifest against the package schema.
func validate(cand *Candidate) error {
	result, err := manifest.ValidateFile(cand.ManifestPath)
	if err != nil {
		return fmt.Errorf("validating %s: %w", cand.ManifestPath, err)
	}
	if result.Valid {
		return nil
	}

	msgs := make([]string, len(result.Issues))
	for i, issue := range result.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Errorf("invalid manifest %s: %s", cand.ManifestPath, strings.Join(msgs, "; "))
}
