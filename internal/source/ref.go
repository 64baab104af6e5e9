package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultBranch is requested when a reference names no branch.
const DefaultBranch = "main"

// ErrInvalidRef is returned for references that do not name a repository.
var ErrInvalidRef = errors.New("invalid repository format, use 'owner/repo'")

// Ref identifies a repository and an optional branch.
type Ref struct {
	Owner  string
	Name   string
	Branch string
}

// Repo returns "owner/name", or just the name when there is no owner.
func (r Ref) Repo() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

// BranchOrDefault returns the branch, or DefaultBranch when unset.
func (r Ref) BranchOrDefault() string {
	if r.Branch == "" {
		return DefaultBranch
	}
	return r.Branch
}

func (r Ref) String() string {
	if r.Branch == "" {
		return r.Repo()
	}
	return r.Repo() + "@" + r.Branch
}

// SharePath is the shareable route for the reference:
// /repo/<owner>/<name>/<branch>/. Branch segments are escaped one by one so
// that a branch containing "/" stays readable; ParseRef takes everything
// after the name as the branch.
func (r Ref) SharePath() string {
	segments := strings.Split(r.BranchOrDefault(), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("/repo/%s/%s/%s/", url.PathEscape(r.Owner), url.PathEscape(r.Name), strings.Join(segments, "/"))
}

// ShareURL joins SharePath onto base.
func (r Ref) ShareURL(base string) string {
	return strings.TrimSuffix(base, "/") + r.SharePath()
}

// ParseRef accepts the reference forms users paste:
//
//	owner/repo
//	owner/repo@branch
//	github.com/owner/repo
//	https://github.com/owner/repo[.git][/tree/<branch>]
//	/repo/owner/repo/<branch>/
//	?repo=owner/repo&branch=<branch> (optionally behind any URL)
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, ErrInvalidRef
	}

	if i := strings.Index(s, "?"); i >= 0 {
		q, err := url.ParseQuery(s[i+1:])
		if err == nil && q.Get("repo") != "" {
			ref, err := splitRepo(q.Get("repo"))
			if err != nil {
				return Ref{}, err
			}
			ref.Branch = q.Get("branch")
			return ref, nil
		}
		s = s[:i]
	}

	var route bool
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		route = u.Host != "github.com" && strings.HasPrefix(u.Path, "/repo/")
		s = u.Path
		if route {
			s = u.EscapedPath()
		}
	} else {
		route = strings.HasPrefix(s, "/repo/")
		s = strings.TrimPrefix(s, "github.com/")
	}
	s = strings.Trim(s, "/")

	if route {
		parts := strings.SplitN(strings.TrimPrefix(s, "repo/"), "/", 3)
		if len(parts) < 2 {
			return Ref{}, ErrInvalidRef
		}
		ref, err := splitRepo(parts[0] + "/" + parts[1])
		if err != nil {
			return Ref{}, err
		}
		if len(parts) == 3 {
			branch, err := url.PathUnescape(parts[2])
			if err != nil {
				return Ref{}, fmt.Errorf("%w: %v", ErrInvalidRef, err)
			}
			ref.Branch = branch
		}
		return ref, nil
	}

	var branch string
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s, branch = s[:i], s[i+1:]
	}

	parts := strings.SplitN(s, "/", 3)
	if len(parts) < 2 {
		return Ref{}, ErrInvalidRef
	}
	ref, err := splitRepo(parts[0] + "/" + parts[1])
	if err != nil {
		return Ref{}, err
	}
	if len(parts) == 3 {
		if b, ok := strings.CutPrefix(parts[2], "tree/"); ok {
			ref.Branch = b
		}
	}
	if branch != "" {
		ref.Branch = branch
	}

	return ref, nil
}

func splitRepo(s string) (Ref, error) {
	owner, name, ok := strings.Cut(strings.Trim(s, "/"), "/")
	name = strings.TrimSuffix(name, ".git")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") ||
		strings.ContainsAny(owner+name, " \t") {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	return Ref{Owner: owner, Name: name}, nil
}
