package schema

import "strings"

type StoreID string

const (
	StoreDocument   StoreID = "document"
	StoreRelational StoreID = "relational"
)

type FieldType string

const (
	TypeString      FieldType = "string"
	TypeInteger     FieldType = "integer"
	TypeDecimal     FieldType = "decimal"
	TypeStringArray FieldType = "array of strings"
)

type Field struct {
	Name          string    `json:"name"`
	Type          FieldType `json:"type"`
	Description   string    `json:"description"`
	ExampleValues []string  `json:"example_values,omitempty"`
}

// Descriptor is the allow-listed shape a store may be queried with. Source is
// the collection name for the document store and the table name for the
// relational store. Fallback is the schema-safe query run when a translated
// query is rejected.
type Descriptor struct {
	StoreID  StoreID `json:"store_id"`
	Source   string  `json:"source"`
	Fields   []Field `json:"fields"`
	Fallback string  `json:"fallback"`

	allowed map[string]struct{}
}

func newDescriptor(store StoreID, source string, fallback string, fields []Field) *Descriptor {
	allowed := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		allowed[field.Name] = struct{}{}
	}
	return &Descriptor{
		StoreID:  store,
		Source:   source,
		Fields:   fields,
		Fallback: fallback,
		allowed:  allowed,
	}
}

// HasField reports whether name is one of the declared fields. Matching is
// case-sensitive.
func (d *Descriptor) HasField(name string) bool {
	_, ok := d.allowed[name]
	return ok
}

// Allows reports whether an identifier in a query may reference this store:
// a declared field or the source itself.
func (d *Descriptor) Allows(identifier string) bool {
	return identifier == d.Source || d.HasField(identifier)
}

func (d *Descriptor) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, field := range d.Fields {
		names = append(names, field.Name)
	}
	return names
}

// Describe renders the descriptor as the plain text block embedded in prompts.
func (d *Descriptor) Describe() string {
	var b strings.Builder
	switch d.StoreID {
	case StoreDocument:
		b.WriteString("Collection: " + d.Source + "\nFields:\n")
	default:
		b.WriteString("Table: " + d.Source + "\nColumns:\n")
	}
	for _, field := range d.Fields {
		b.WriteString("- " + field.Name + ": " + string(field.Type))
		if field.Description != "" {
			b.WriteString(" (" + field.Description + ")")
		}
		if len(field.ExampleValues) > 0 {
			b.WriteString(" e.g. " + strings.Join(field.ExampleValues, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

const (
	ClientsCollection = "clients"
	PortfoliosTable   = "portfolios"

	PortfoliosFallbackSQL = "SELECT relationship_manager, SUM(portfolio_value) AS total_portfolio_value FROM portfolios GROUP BY relationship_manager;"
	ClientsFallbackFilter = "{}"
)

var (
	clients = newDescriptor(StoreDocument, ClientsCollection, ClientsFallbackFilter, []Field{
		{Name: "name", Type: TypeString, Description: "client name", ExampleValues: []string{`"Alice"`, `"Bob"`, `"Charlie"`}},
		{Name: "risk", Type: TypeString, Description: "risk appetite", ExampleValues: []string{`"High"`, `"Medium"`, `"Low"`}},
		{Name: "age", Type: TypeInteger, Description: "client age in years", ExampleValues: []string{"45", "52", "38"}},
		{Name: "city", Type: TypeString, Description: "city of residence", ExampleValues: []string{`"Mumbai"`, `"Delhi"`, `"Bangalore"`, `"Pune"`, `"Chennai"`}},
		{Name: "preferences", Type: TypeStringArray, Description: "investment preferences", ExampleValues: []string{`["tech", "banking"]`, `["energy", "auto"]`}},
	})

	portfolios = newDescriptor(StoreRelational, PortfoliosTable, PortfoliosFallbackSQL, []Field{
		{Name: "id", Type: TypeInteger, Description: "primary key"},
		{Name: "client_name", Type: TypeString, Description: "the name of the client", ExampleValues: []string{"Alice", "Bob"}},
		{Name: "portfolio_value", Type: TypeDecimal, Description: "the total value of the client portfolio", ExampleValues: []string{"10000000.00", "8500000.00"}},
		{Name: "relationship_manager", Type: TypeString, Description: "the RM for the client", ExampleValues: []string{"Rajiv Mehra", "Priya Shah", "Suresh Iyer"}},
		{Name: "stock", Type: TypeString, Description: "the main stock held in this portfolio", ExampleValues: []string{"HDFC Bank", "Reliance", "Infosys", "TCS"}},
	})
)

// Clients describes the client profile collection of the document store.
func Clients() *Descriptor { return clients }

// Portfolios describes the portfolios table of the relational store.
func Portfolios() *Descriptor { return portfolios }

func ForStore(store StoreID) *Descriptor {
	if store == StoreDocument {
		return clients
	}
	return portfolios
}
