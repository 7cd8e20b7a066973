package resource

import "net/url"

var (
	validTypes      = []Type{TypeArticle, TypeVideo, TypeCourse, TypeProject, TypeOther}
	validStatuses   = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}
	validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
)

// IsValidURL reports whether s is an absolute URL with a scheme and a host.
func IsValidURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if !u.IsAbs() {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

func IsValidResourceType(s string) bool {
	for _, t := range validTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

func IsValidStatus(s string) bool {
	for _, st := range validStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

func IsValidPriority(s string) bool {
	for _, p := range validPriorities {
		if string(p) == s {
			return true
		}
	}
	return false
}
