// Package errs provides the error type returned by every stage of schema
// inference.
//
// Backends translate driver errors into *errs.Error before returning them.
// Callers branch on the Kind through the Is* predicates:
//
//	s, err := inferschema.Infer(ctx, url, nil)
//	if errs.IsMissingPrimaryKey(err) {
//	    ...
//	}
package errs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrKind categorises an inference failure
type ErrKind int

const (
	ErrKindUnknown                      ErrKind = iota
	ErrKindUnrecognizedConnectionString         // no backend accepts the URL
	ErrKindConnectionFailed                     // the backend client could not connect
	ErrKindCatalogQueryFailed                   // a catalog query errored
	ErrKindTableVanished                        // a listed table could not be inspected
	ErrKindUnsupportedColumnType                // no logical type for the raw type
	ErrKindMissingPrimaryKey                    // table has no primary key
	ErrKindPrimaryKeyTooWide                    // primary key wider than the policy limit
	ErrKindEmptySchema                          // an explicitly requested schema has no tables
	ErrKindInvalidInput                         // bad arguments or configuration
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindUnrecognizedConnectionString:
		return "unrecognized_connection_string"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindCatalogQueryFailed:
		return "catalog_query_failed"
	case ErrKindTableVanished:
		return "table_vanished"
	case ErrKindUnsupportedColumnType:
		return "unsupported_column_type"
	case ErrKindMissingPrimaryKey:
		return "missing_primary_key"
	case ErrKindPrimaryKeyTooWide:
		return "primary_key_too_wide"
	case ErrKindEmptySchema:
		return "empty_schema"
	case ErrKindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the inference packages.
// Only the fields relevant to Kind are set.
type Error struct {
	Kind      ErrKind
	Message   string
	URL       string // redacted database URL
	Schema    string
	Table     string
	Column    string
	Operation string // catalog operation, e.g. "list_columns"
	RawType   string
	Count     int
	Cause     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Message)
	if e.URL != "" {
		fmt.Fprintf(&b, " (database `%s`", e.URL)
		if e.Schema != "" {
			fmt.Fprintf(&b, " with schema `%s`", e.Schema)
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is / errors.As to reach the driver error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message and cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func UnrecognizedConnectionString(rawURL string) *Error {
	return &Error{
		Kind:    ErrKindUnrecognizedConnectionString,
		Message: "connection string does not match any enabled backend",
		URL:     Redact(rawURL),
	}
}

func ConnectionFailed(rawURL string, cause error) *Error {
	return &Error{
		Kind:    ErrKindConnectionFailed,
		Message: "failed to establish a database connection",
		URL:     Redact(rawURL),
		Cause:   cause,
	}
}

func CatalogQueryFailed(operation, table string, cause error) *Error {
	msg := operation + " failed"
	if table != "" {
		msg = fmt.Sprintf("%s failed for table %s", operation, table)
	}
	return &Error{
		Kind:      ErrKindCatalogQueryFailed,
		Message:   msg,
		Operation: operation,
		Table:     table,
		Cause:     cause,
	}
}

func TableVanished(operation, table string, cause error) *Error {
	return &Error{
		Kind:      ErrKindTableVanished,
		Message:   fmt.Sprintf("no table exists named %s", table),
		Operation: operation,
		Table:     table,
		Cause:     cause,
	}
}

func UnsupportedColumnType(rawType string) *Error {
	return &Error{
		Kind:    ErrKindUnsupportedColumnType,
		Message: fmt.Sprintf("unsupported column type %q", rawType),
		RawType: rawType,
	}
}

func MissingPrimaryKey(table string) *Error {
	return &Error{
		Kind:    ErrKindMissingPrimaryKey,
		Message: fmt.Sprintf("table %s has no primary key", table),
		Table:   table,
	}
}

func PrimaryKeyTooWide(table string, count, limit int) *Error {
	return &Error{
		Kind: ErrKindPrimaryKeyTooWide,
		Message: fmt.Sprintf("table %s has %d columns in its primary key, at most %d are supported",
			table, count, limit),
		Table: table,
		Count: count,
	}
}

func EmptySchema(schemaName string) *Error {
	return &Error{
		Kind:    ErrKindEmptySchema,
		Message: fmt.Sprintf("schema %s contains no tables", schemaName),
		Schema:  schemaName,
	}
}

// WithContext stamps the database URL and schema onto err when it is an
// *Error that does not carry them yet. Other errors are returned unchanged.
func WithContext(err error, rawURL, schemaName string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.URL == "" {
		e.URL = Redact(rawURL)
	}
	if e.Schema == "" {
		e.Schema = schemaName
	}
	return err
}

// Redact hides the password of URL-shaped connection strings.
// Strings that do not parse as URLs (SQLite paths) are returned as is.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	return u.Redacted()
}

// --- Predicates ---

func IsUnrecognizedConnectionString(err error) bool {
	return KindOf(err) == ErrKindUnrecognizedConnectionString
}

func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

func IsCatalogQueryFailed(err error) bool {
	return KindOf(err) == ErrKindCatalogQueryFailed
}

func IsTableVanished(err error) bool {
	return KindOf(err) == ErrKindTableVanished
}

func IsUnsupportedColumnType(err error) bool {
	return KindOf(err) == ErrKindUnsupportedColumnType
}

func IsMissingPrimaryKey(err error) bool {
	return KindOf(err) == ErrKindMissingPrimaryKey
}

func IsPrimaryKeyTooWide(err error) bool {
	return KindOf(err) == ErrKindPrimaryKeyTooWide
}

func IsEmptySchema(err error) bool {
	return KindOf(err) == ErrKindEmptySchema
}

func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
