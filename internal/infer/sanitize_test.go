package infer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tordrt/inferschema/internal/config"
	"github.com/tordrt/inferschema/internal/logger"
	"github.com/tordrt/inferschema/internal/schema"
)

func table(name string, pk ...string) schema.Table {
	return schema.Table{ID: schema.TableIdentifier{Name: name}, PrimaryKey: pk}
}

func fk(child, column, parent, parentColumn string) schema.ForeignKeyConstraint {
	return schema.ForeignKeyConstraint{
		Name:             child + "_" + column + "_fkey",
		ChildTable:       schema.TableIdentifier{Name: child},
		ParentTable:      schema.TableIdentifier{Name: parent},
		ForeignKeyColumn: column,
		ParentColumn:     parentColumn,
	}
}

func TestSanitize(t *testing.T) {
	known := []schema.Table{
		table("users", "id"),
		table("posts", "id"),
		table("employees", "id"),
		table("orders", "id"),
		table("memberships", "user_id", "org_id"),
		table("messages", "id"),
	}

	tests := []struct {
		name string
		raw  []schema.ForeignKeyConstraint
		want []schema.ForeignKeyConstraint
	}{
		{
			name: "simple relation kept",
			raw:  []schema.ForeignKeyConstraint{fk("posts", "user_id", "users", "id")},
			want: []schema.ForeignKeyConstraint{fk("posts", "user_id", "users", "id")},
		},
		{
			name: "self referential dropped",
			raw:  []schema.ForeignKeyConstraint{fk("employees", "manager_id", "employees", "id")},
			want: []schema.ForeignKeyConstraint{},
		},
		{
			name: "unknown parent dropped, others unaffected",
			raw: []schema.ForeignKeyConstraint{
				fk("orders", "archived_id", "archived_orders", "id"),
				fk("posts", "user_id", "users", "id"),
			},
			want: []schema.ForeignKeyConstraint{fk("posts", "user_id", "users", "id")},
		},
		{
			name: "unknown child dropped",
			raw:  []schema.ForeignKeyConstraint{fk("audit", "user_id", "users", "id")},
			want: []schema.ForeignKeyConstraint{},
		},
		{
			name: "ambiguous pair dropped in both directions",
			raw: []schema.ForeignKeyConstraint{
				fk("messages", "sender_id", "users", "id"),
				fk("messages", "recipient_id", "users", "id"),
				fk("posts", "user_id", "users", "id"),
			},
			want: []schema.ForeignKeyConstraint{fk("posts", "user_id", "users", "id")},
		},
		{
			name: "reverse direction counts as the same pair",
			raw: []schema.ForeignKeyConstraint{
				fk("posts", "user_id", "users", "id"),
				fk("users", "pinned_post_id", "posts", "id"),
			},
			want: []schema.ForeignKeyConstraint{},
		},
		{
			name: "parent without single column key dropped",
			raw:  []schema.ForeignKeyConstraint{fk("orders", "membership_id", "memberships", "user_id")},
			want: []schema.ForeignKeyConstraint{},
		},
		{
			name: "reference to non key column dropped",
			raw:  []schema.ForeignKeyConstraint{fk("posts", "user_email", "users", "email")},
			want: []schema.ForeignKeyConstraint{},
		},
		{
			name: "implicit parent column kept",
			raw:  []schema.ForeignKeyConstraint{fk("posts", "user_id", "users", "")},
			want: []schema.ForeignKeyConstraint{fk("posts", "user_id", "users", "")},
		},
		{
			name: "empty input",
			raw:  nil,
			want: []schema.ForeignKeyConstraint{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.raw, known)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize_OutputIsSubsetInOrder(t *testing.T) {
	known := []schema.Table{table("a", "id"), table("b", "id"), table("c", "id"), table("d", "id")}
	raw := []schema.ForeignKeyConstraint{
		fk("c", "a_id", "a", "id"),
		fk("b", "b_id", "b", "id"),
		fk("d", "a_id", "a", "id"),
		fk("b", "x_id", "x", "id"),
		fk("d", "c_id", "c", "id"),
	}

	got := Sanitize(raw, known)

	assert.Equal(t, []schema.ForeignKeyConstraint{raw[0], raw[2], raw[4]}, got)
	for _, c := range got {
		assert.NotEqual(t, c.ChildTable, c.ParentTable)
	}
}

func TestSanitize_PolicyToggles(t *testing.T) {
	known := []schema.Table{table("employees", "id"), table("users", "id"), table("messages", "id")}
	raw := []schema.ForeignKeyConstraint{
		fk("employees", "manager_id", "employees", "id"),
		fk("messages", "sender_id", "users", "id"),
		fk("messages", "recipient_id", "users", "id"),
	}

	got := NewSanitizer(config.ForeignKeyPolicy{UnknownTables: config.UnknownTablesSilent}, nil).Sanitize(raw, known)
	assert.Equal(t, raw, got, "disabled rules keep every known-table relation")

	policy := config.DefaultPolicy().ForeignKeys
	policy.DropAmbiguous = false
	got = NewSanitizer(policy, nil).Sanitize(raw, known)
	assert.Equal(t, raw[1:], got)
}

func TestSanitize_UnknownTableLogging(t *testing.T) {
	known := []schema.Table{table("orders", "id")}
	raw := []schema.ForeignKeyConstraint{fk("orders", "archived_id", "archived_orders", "id")}

	run := func(mode string) string {
		var buf bytes.Buffer
		log := logger.New(&logger.Config{Level: "warn", Format: "json", Output: &buf})
		policy := config.DefaultPolicy().ForeignKeys
		policy.UnknownTables = mode

		got := NewSanitizer(policy, log).Sanitize(raw, known)
		assert.Empty(t, got)
		return buf.String()
	}

	assert.Empty(t, run(config.UnknownTablesSilent))

	out := run(config.UnknownTablesWarn)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"parent":"archived_orders"`)
}
