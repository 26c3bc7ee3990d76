package document

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wealthdesk/wealthdesk/internal/result"
	"github.com/wealthdesk/wealthdesk/internal/schema"
	"github.com/wealthdesk/wealthdesk/internal/store"
	"github.com/wealthdesk/wealthdesk/internal/translate"
)

// Finder runs a projected find and returns every matching document.
type Finder interface {
	Find(ctx context.Context, filter any, projection bson.D) ([]bson.D, error)
	Ping(ctx context.Context) error
}

type Executor struct {
	finder       Finder
	descriptor   *schema.Descriptor
	queryTimeout time.Duration
}

func NewExecutor(finder Finder, descriptor *schema.Descriptor, queryTimeout time.Duration) *Executor {
	if descriptor == nil {
		descriptor = schema.Clients()
	}
	if queryTimeout <= 0 {
		queryTimeout = store.DefaultQueryTimeout
	}
	return &Executor{finder: finder, descriptor: descriptor, queryTimeout: queryTimeout}
}

// Execute runs a validated filter. Columns follow the descriptor's field
// order and sequences are flattened to comma-joined text.
func (e *Executor) Execute(ctx context.Context, candidate translate.Candidate) (result.Table, error) {
	filter, ok := candidate.(translate.DocumentFilter)
	if !ok {
		return result.Table{}, store.ExecutionFailed("document execute", fmt.Errorf("unsupported candidate for store %q", candidate.Store()))
	}
	if filter == nil {
		filter = translate.DocumentFilter{}
	}

	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	documents, err := e.finder.Find(ctx, map[string]any(filter), e.projection())
	if err != nil {
		return result.Table{}, err
	}

	columns := e.descriptor.FieldNames()
	rows := make([][]any, 0, len(documents))
	for _, document := range documents {
		rows = append(rows, e.row(document, columns))
	}

	table := result.NewTable(columns, rows)
	for i, field := range e.descriptor.Fields {
		table.Columns[i].Kind = kindForField(field.Type)
	}
	return table, nil
}

func (e *Executor) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()
	if err := e.finder.Ping(ctx); err != nil {
		return store.Unavailable("ping document store", err)
	}
	return nil
}

func (e *Executor) projection() bson.D {
	projection := bson.D{{Key: "_id", Value: 0}}
	for _, name := range e.descriptor.FieldNames() {
		projection = append(projection, bson.E{Key: name, Value: 1})
	}
	return projection
}

func (e *Executor) row(document bson.D, columns []string) []any {
	values := make(map[string]any, len(document))
	for _, element := range document {
		values[element.Key] = element.Value
	}
	row := make([]any, len(columns))
	for i, column := range columns {
		row[i] = normalizeValue(values[column])
	}
	return row
}

func kindForField(fieldType schema.FieldType) result.Kind {
	switch fieldType {
	case schema.TypeInteger, schema.TypeDecimal:
		return result.KindNumber
	case schema.TypeString, schema.TypeStringArray:
		return result.KindString
	default:
		return result.KindOther
	}
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case string, int64, float64:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case int32:
		return int64(typed)
	case int:
		return int64(typed)
	case bson.Decimal128:
		return typed.String()
	case bson.A:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, fmt.Sprint(normalizeValue(item)))
		}
		return strings.Join(parts, ", ")
	case []any:
		return normalizeValue(bson.A(typed))
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// Collection adapts a driver collection to Finder.
type Collection struct {
	coll *mongo.Collection
}

func NewCollection(coll *mongo.Collection) *Collection {
	return &Collection{coll: coll}
}

func (c *Collection) Find(ctx context.Context, filter any, projection bson.D) ([]bson.D, error) {
	cursor, err := c.coll.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		if unreachable(err) {
			return nil, store.Unavailable("find", err)
		}
		return nil, store.ExecutionFailed("find", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	documents := make([]bson.D, 0)
	for cursor.Next(ctx) {
		var document bson.D
		if err := cursor.Decode(&document); err != nil {
			return nil, store.ExecutionFailed("decode", err)
		}
		documents = append(documents, document)
	}
	if err := cursor.Err(); err != nil {
		return nil, store.Unavailable("cursor", err)
	}
	return documents, nil
}

func unreachable(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err)
}

func (c *Collection) Ping(ctx context.Context) error {
	return c.coll.Database().Client().Ping(ctx, nil)
}
