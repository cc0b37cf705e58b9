// Package repository provides user-scoped access to semesters, courses and
// assignments on top of a document store, maintaining the denormalised
// child-id lists parents keep about their children.
//
// Create and delete touch the child and its parent in separate store calls.
// They are not transactional: a failure between the calls leaves the parent's
// list out of step with the children, and nothing is rolled back. Readers
// tolerate such drift by skipping ids that do not resolve.
package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/snowflake"
	"github.com/noah-isme/planner-go-api/internal/store"
)

var (
	// ErrNotAuthenticated is returned when a repository is requested without a user.
	ErrNotAuthenticated = errors.New("no authenticated user")
	// ErrNotFound is returned by writes that target a record the user does not
	// own or that does not exist, including creates reusing a foreign id.
	ErrNotFound = errors.New("record not found")
)

const (
	fieldUserID        = "userId"
	fieldSemesterID    = "semesterId"
	fieldCourseID      = "courseId"
	fieldCourseIDs     = "courseIds"
	fieldAssignmentIDs = "assignmentIds"
)

// Repositories bundles the repositories bound to one authenticated user.
type Repositories struct {
	UserID      string
	Semesters   SemesterRepository
	Courses     CourseRepository
	Assignments AssignmentRepository
}

// New binds repositories to userID. It fails fast, before any store call,
// when userID is empty.
func New(docs store.DocumentStore, userID string, logger zerolog.Logger) (*Repositories, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	s := scope{
		docs:   docs,
		userID: userID,
		logger: logger.With().Str("component", "repository").Str("user_id", userID).Logger(),
	}

	return &Repositories{
		UserID:      userID,
		Semesters:   &semesterRepository{scope: s},
		Courses:     &courseRepository{scope: s},
		Assignments: &assignmentRepository{scope: s},
	}, nil
}

// Factory builds repositories for a user id, typically taken from the session.
type Factory func(userID string) (*Repositories, error)

// NewFactory returns a Factory over a shared store.
func NewFactory(docs store.DocumentStore, logger zerolog.Logger) Factory {
	return func(userID string) (*Repositories, error) {
		return New(docs, userID, logger)
	}
}

// scope carries the store and the owning user every call is filtered by.
type scope struct {
	docs   store.DocumentStore
	userID string
	logger zerolog.Logger
}

func (s scope) list(ctx context.Context, collection string, filters ...store.Filter) ([]store.Document, error) {
	all := append([]store.Filter{store.Eq(fieldUserID, s.userID)}, filters...)
	documents, err := s.docs.Query(ctx, collection, all...)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(documents, func(i, j int) bool {
		return snowflake.ID(documents[i].ID).Less(snowflake.ID(documents[j].ID))
	})
	return documents, nil
}

// get reports found == false both for missing documents and for documents
// owned by someone else.
func (s scope) get(ctx context.Context, collection, id string) (store.Document, bool, error) {
	if id == "" {
		return store.Document{}, false, nil
	}

	document, err := s.docs.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Document{}, false, nil
		}
		return store.Document{}, false, err
	}

	if owner, _ := document.Data[fieldUserID].(string); owner != s.userID {
		return store.Document{}, false, nil
	}
	return document, true, nil
}

// put writes a full document. When the caller chose the id, a document
// already stored under it must belong to the user; otherwise put fails with
// ErrNotFound and writes nothing.
func (s scope) put(ctx context.Context, collection, id string, callerID bool, data map[string]any) error {
	if callerID {
		if err := s.claim(ctx, collection, id); err != nil {
			return err
		}
	}
	data[fieldUserID] = s.userID
	return s.docs.Set(ctx, collection, id, data)
}

func (s scope) claim(ctx context.Context, collection, id string) error {
	document, err := s.docs.Get(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner, _ := document.Data[fieldUserID].(string); owner != s.userID {
		return ErrNotFound
	}
	return nil
}

func (s scope) merge(ctx context.Context, collection, id string, fields map[string]any) error {
	if _, found, err := s.get(ctx, collection, id); err != nil {
		return err
	} else if !found {
		return ErrNotFound
	}
	if len(fields) == 0 {
		return nil
	}

	delete(fields, fieldUserID)
	if err := s.docs.Update(ctx, collection, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// appendChild adds childID to the parent's id list unless it is already present.
// A parent that does not resolve is skipped.
func (s scope) appendChild(ctx context.Context, parentCollection, parentID, field, childID string) error {
	parent, found, err := s.get(ctx, parentCollection, parentID)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Debug().
			Str("parent_collection", parentCollection).
			Str("parent_id", parentID).
			Str("child_id", childID).
			Msg("parent missing, back-reference skipped")
		return nil
	}

	ids := stringList(parent.Data[field])
	for _, existing := range ids {
		if existing == childID {
			return nil
		}
	}

	ids = append(ids, childID)
	return s.docs.Update(ctx, parentCollection, parentID, map[string]any{field: ids})
}

// removeChild drops childID from the parent's id list. Missing parents and
// ids already absent are not errors.
func (s scope) removeChild(ctx context.Context, parentCollection, parentID, field, childID string) error {
	parent, found, err := s.get(ctx, parentCollection, parentID)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Debug().
			Str("parent_collection", parentCollection).
			Str("parent_id", parentID).
			Str("child_id", childID).
			Msg("parent missing, back-reference removal skipped")
		return nil
	}

	ids := stringList(parent.Data[field])
	kept := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != childID {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}

	return s.docs.Update(ctx, parentCollection, parentID, map[string]any{field: kept})
}

func (s scope) warnPartial(err error, step, childID, parentID string) {
	s.logger.Warn().
		Err(err).
		Str("step", step).
		Str("child_id", childID).
		Str("parent_id", parentID).
		Msg("multi-step write left partially applied")
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
