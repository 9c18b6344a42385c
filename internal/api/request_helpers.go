package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// dateLayout is the accepted format of the due_after and due_before filters.
const dateLayout = "2006-01-02"

// getUserIDFromContext extracts the authenticated user's UUID from the request context.
// The user ID is expected to be placed in the context by the authentication middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "This field is required.", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "Must be a valid UUID.", domain.ErrInvalidID)
	}

	return id, nil
}

// handleUserID extracts the caller's ID, writing a 401 when it is absent.
func handleUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		if log == nil {
			log = logger.FromContextOrDefault(r.Context(), slog.Default())
		}
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathUUID is a composite helper that extracts both the user ID from context
// and a UUID from the path parameters. It writes an error response if either extraction fails.
//
// A malformed ID is reported as 404, since no resource can live at that path.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	notFound error,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid "+paramName,
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, notFound, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// parseTaskFilter reads the list query parameters. Every malformed
// parameter is reported; unknown parameters are ignored.
func parseTaskFilter(q url.Values) (store.TaskFilter, error) {
	var (
		filter store.TaskFilter
		errs   domain.ValidationErrors
	)

	if v := strings.TrimSpace(q.Get("status")); v != "" {
		status, err := domain.ParseStatus(v)
		if err != nil {
			errs = append(errs, invalidChoice("status", v))
		} else {
			filter.Status = &status
		}
	}

	if v := strings.TrimSpace(q.Get("priority")); v != "" {
		priority, err := domain.ParsePriority(v)
		if err != nil {
			errs = append(errs, invalidChoice("priority", v))
		} else {
			filter.Priority = &priority
		}
	}

	filter.Category = strings.TrimSpace(q.Get("category"))
	filter.Tags = splitNames(q.Get("tags"))
	filter.Search = strings.TrimSpace(q.Get("search"))
	filter.Ordering = store.ParseOrdering(q.Get("ordering"))

	if id, ok, err := optionalUUID(q, "category_id"); err != nil {
		errs = append(errs, err)
	} else if ok {
		filter.CategoryID = &id
	}

	if id, ok, err := optionalUUID(q, "tag_id"); err != nil {
		errs = append(errs, err)
	} else if ok {
		filter.TagID = &id
	}

	// Both bounds are inclusive calendar days, so the upper bound becomes
	// the start of the following day.
	if day, ok, err := optionalDate(q, "due_after"); err != nil {
		errs = append(errs, err)
	} else if ok {
		filter.DueFrom = &day
	}

	if day, ok, err := optionalDate(q, "due_before"); err != nil {
		errs = append(errs, err)
	} else if ok {
		next := day.AddDate(0, 0, 1)
		filter.DueTo = &next
	}

	return filter, errs.OrNil()
}

// parsePage reads limit and offset. Absent values are zero.
func parsePage(q url.Values) (limit, offset int, err error) {
	var errs domain.ValidationErrors
	limit, e := optionalInt(q, "limit")
	if e != nil {
		errs = append(errs, e)
	}
	offset, e = optionalInt(q, "offset")
	if e != nil {
		errs = append(errs, e)
	}
	return limit, offset, errs.OrNil()
}

// splitNames splits a comma-separated list, dropping blanks and repeats.
func splitNames(raw string) []string {
	if raw == "" {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func invalidChoice(field, value string) *domain.ValidationError {
	return domain.NewValidationError(field,
		fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", value),
		domain.ErrInvalidFormat)
}

func optionalUUID(q url.Values, name string) (uuid.UUID, bool, *domain.ValidationError) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, false, domain.NewValidationError(name, "Must be a valid UUID.", domain.ErrInvalidID)
	}
	return id, true, nil
}

func optionalDate(q url.Values, name string) (time.Time, bool, *domain.ValidationError) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return time.Time{}, false, nil
	}
	day, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, false, domain.NewValidationError(name, "Enter a valid date.", domain.ErrInvalidFormat)
	}
	return day, true, nil
}

func optionalInt(q url.Values, name string) (int, *domain.ValidationError) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "A valid non-negative integer is required.", domain.ErrInvalidFormat)
	}
	return n, nil
}
