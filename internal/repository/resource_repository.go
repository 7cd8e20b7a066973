package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"learnmap/internal/domain/resource"
)

type ResourceGateway = Gateway[resource.Resource, *resource.Resource]

var resourceTable = Table[resource.Resource]{
	Name: "resources",
	Columns: []string{
		"title", "url", "type", "description", "completed", "status", "priority",
		"tags", "estimated_time_minutes", "progress_percentage", "last_accessed_at",
	},
	Values: func(r *resource.Resource) []any {
		var lastAccessed any
		if r.LastAccessedAt != nil {
			lastAccessed = r.LastAccessedAt.UTC()
		}
		return []any{
			r.Title, r.URL, string(r.Type), r.Description, r.Completed, string(r.Status), string(r.Priority),
			stringList(r.Tags), r.EstimatedTimeMinutes, r.ProgressPercentage, lastAccessed,
		}
	},
	Dest: func(r *resource.Resource) []any {
		return []any{
			&r.Title, &r.URL, (*string)(&r.Type), &r.Description, &r.Completed, (*string)(&r.Status), (*string)(&r.Priority),
			(*stringList)(&r.Tags), &r.EstimatedTimeMinutes, &r.ProgressPercentage, nullTime{&r.LastAccessedAt},
		}
	},
}

func NewResourceGateway(db *sqlx.DB, timeout time.Duration) *ResourceGateway {
	return NewGateway[resource.Resource, *resource.Resource](db, resourceTable, timeout)
}
