package join

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"github.com/lemmego/searchable/meta"
	"github.com/lemmego/searchable/relation"
)

// Kind records whether a joined path's columns must be selected for
// hydration (Fetch) or only used to evaluate predicates/ordering
// (FilterOnly). SQL itself has no "fetch join" concept; this distinction
// only matters for which columns Phase 2 projects, per spec §4.7/§4.8.
type Kind int

const (
	FilterOnly Kind = iota
	Fetch
)

type joinedPath struct {
	alias    string
	kind     Kind
	isToMany bool
	target   reflect.Type // entity type the path resolves to
}

// Plan tracks every path joined onto one SELECT/UPDATE/DELETE root so far,
// keyed by dotted entity path, and implements search.ColumnResolver over
// that join set. A Plan is built fresh per statement; it is never shared
// across calls (spec §5: no request-scoped state is shared).
type Plan struct {
	root      interface{}
	rootAlias string
	joined    map[string]*joinedPath
	outcomes  []Outcome
}

// NewPlan starts a join plan rooted at rootAlias (normally the root
// entity's table name, already placed on the SELECT's FROM clause by the
// caller).
func NewPlan(root interface{}, rootAlias string) *Plan {
	return &Plan{root: root, rootAlias: rootAlias, joined: make(map[string]*joinedPath)}
}

// Outcomes returns what happened for every path this plan was asked to
// join, in the order they were processed.
func (p *Plan) Outcomes() []Outcome { return p.outcomes }

// Column implements search.ColumnResolver: it resolves a dotted entity
// path to a qualified "alias.column" reference against whatever joins have
// already been applied by a Strategy call.
func (p *Plan) Column(entityField string) (string, error) {
	i := strings.LastIndex(entityField, ".")
	if i < 0 {
		attr, err := meta.Attribute(p.root, entityField)
		if err != nil {
			return "", err
		}
		return p.rootAlias + "." + attr.Column, nil
	}

	parentPath, leaf := entityField[:i], entityField[i+1:]
	jp, ok := p.joined[parentPath]
	if !ok {
		return "", fmt.Errorf("join: path %q is not joined", parentPath)
	}
	attr, err := meta.Attribute(zeroOf(jp.target), leaf)
	if err != nil {
		return "", err
	}
	return jp.alias + "." + attr.Column, nil
}

// IsJSONText implements search.ColumnResolver by resolving the attribute
// and reporting its metamodel JSONText flag (spec §4.5).
func (p *Plan) IsJSONText(entityField string) bool {
	owner, leaf := p.root, entityField
	if i := strings.LastIndex(entityField, "."); i >= 0 {
		jp, ok := p.joined[entityField[:i]]
		if !ok {
			return false
		}
		owner, leaf = zeroOf(jp.target), entityField[i+1:]
	}
	attr, err := meta.Attribute(owner, leaf)
	if err != nil {
		return false
	}
	return attr.JSONText
}

// ensure resolves every segment of path in order, adding a LEFT JOIN to sb
// for any segment not already joined, and returns the joinedPath for the
// full path. If kind is Fetch and the path was previously joined
// FilterOnly, its kind is upgraded in place (spec §4.7: "reusing existing
// joins by attribute name") without emitting a second join clause.
func (p *Plan) ensure(sb *sqlbuilder.SelectBuilder, path string, kind Kind) (*joinedPath, error) {
	if jp, ok := p.joined[path]; ok {
		if kind == Fetch {
			jp.kind = Fetch
		}
		return jp, nil
	}

	segs := strings.Split(path, ".")
	fromAlias := p.rootAlias
	fromEntity := p.root
	var cur string

	for idx, seg := range segs {
		if cur == "" {
			cur = seg
		} else {
			cur = cur + "." + seg
		}

		if jp, ok := p.joined[cur]; ok {
			fromAlias = jp.alias
			fromEntity = zeroOf(jp.target)
			continue
		}

		attr, err := meta.Attribute(fromEntity, seg)
		if err != nil {
			return nil, err
		}
		if attr.Target == nil {
			return nil, fmt.Errorf("join: %q is not a relationship attribute", cur)
		}

		segKind := kind
		if idx < len(segs)-1 {
			// Only the final segment carries the requested kind; every
			// intermediate segment on the path only needs to exist for
			// filtering/navigation.
			segKind = FilterOnly
		}

		alias := "j_" + strings.ReplaceAll(cur, ".", "_")
		targetZero := zeroOf(attr.Target)

		if attr.Kind == meta.ManyToMany {
			junctionAlias := alias + "_through"
			if err := joinManyToMany(sb, fromEntity, fromAlias, seg, attr, targetZero, junctionAlias, alias); err != nil {
				return nil, err
			}
			jp := &joinedPath{alias: alias, kind: segKind, isToMany: true, target: attr.Target}
			p.joined[cur] = jp
			fromAlias = alias
			fromEntity = targetZero
			continue
		}

		onExpr, err := joinCondition(fromEntity, fromAlias, seg, attr, targetZero, alias)
		if err != nil {
			return nil, err
		}

		table := relation.TableNameFor(targetZero) + " AS " + alias
		sb.JoinWithOption(sqlbuilder.LeftJoin, table, onExpr)

		jp := &joinedPath{alias: alias, kind: segKind, isToMany: attr.Kind.IsToMany(), target: attr.Target}
		p.joined[cur] = jp
		fromAlias = alias
		fromEntity = targetZero
	}

	return p.joined[path], nil
}

// joinCondition derives the ON clause for one relationship segment,
// following a simple convention (since the metamodel carries no explicit
// FK-column annotation): the owning side's foreign key column is the
// attribute's snake_cased name suffixed "_id"; the inverse side's foreign
// key column is the owner type's snake_cased name suffixed "_id". This
// mirrors the naming convention go-pluralize/jinzhu-inflection already
// assume elsewhere in this module for table names.
//
// ManyToMany never reaches here: it has no direct FK on either table and is
// handled by joinManyToMany instead.
func joinCondition(fromEntity interface{}, fromAlias, attrName string, attr *meta.Attribute, targetZero interface{}, toAlias string) (string, error) {
	switch {
	case attr.Kind.IsToOne():
		fk := toSnake(attrName) + "_id"
		pk := meta.PrimaryKey(targetZero)
		if len(pk) == 0 {
			return "", fmt.Errorf("join: target of %q has no primary key", attrName)
		}
		pkAttr, err := meta.Attribute(targetZero, pk[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s = %s.%s", fromAlias, fk, toAlias, pkAttr.Column), nil

	case attr.Kind == meta.ManyToMany:
		return "", fmt.Errorf("join: %q is a many-to-many relationship, use joinManyToMany", attrName)

	case attr.Kind.IsToMany():
		ownerFK := toSnake(meta.TypeName(fromEntity)) + "_id"
		ownerPK := meta.PrimaryKey(fromEntity)
		if len(ownerPK) == 0 {
			return "", fmt.Errorf("join: %q has no primary key", meta.TypeName(fromEntity))
		}
		ownerPKAttr, err := meta.Attribute(fromEntity, ownerPK[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s = %s.%s", toAlias, ownerFK, fromAlias, ownerPKAttr.Column), nil

	default:
		return "", fmt.Errorf("join: %q is not joinable", attrName)
	}
}

// joinManyToMany emits the two-hop LEFT JOIN a ManyToMany attribute needs:
// owner table -> junction table -> target table, per spec.md's scenario S2
// (`LEFT JOIN post_tag pt ON ... LEFT JOIN tag t ON ...`). The junction
// table name comes from the attribute's `rel:"m2m,through=..."` tag; its two
// FK columns follow the same "<snake_type>_id" convention joinCondition uses
// elsewhere, one per side of the relationship.
func joinManyToMany(sb *sqlbuilder.SelectBuilder, fromEntity interface{}, fromAlias, attrName string, attr *meta.Attribute, targetZero interface{}, junctionAlias, targetAlias string) error {
	if attr.Junction == "" {
		return fmt.Errorf("join: %q is many-to-many but declares no junction table (rel:\"m2m,through=...\")", attrName)
	}

	ownerPK := meta.PrimaryKey(fromEntity)
	if len(ownerPK) == 0 {
		return fmt.Errorf("join: %q has no primary key", meta.TypeName(fromEntity))
	}
	ownerPKAttr, err := meta.Attribute(fromEntity, ownerPK[0])
	if err != nil {
		return err
	}
	ownerFK := toSnake(meta.TypeName(fromEntity)) + "_id"

	targetPK := meta.PrimaryKey(targetZero)
	if len(targetPK) == 0 {
		return fmt.Errorf("join: target of %q has no primary key", attrName)
	}
	targetPKAttr, err := meta.Attribute(targetZero, targetPK[0])
	if err != nil {
		return err
	}
	targetFK := toSnake(meta.TypeName(targetZero)) + "_id"

	junctionOn := fmt.Sprintf("%s.%s = %s.%s", fromAlias, ownerPKAttr.Column, junctionAlias, ownerFK)
	sb.JoinWithOption(sqlbuilder.LeftJoin, attr.Junction+" AS "+junctionAlias, junctionOn)

	targetOn := fmt.Sprintf("%s.%s = %s.%s", junctionAlias, targetFK, targetAlias, targetPKAttr.Column)
	table := relation.TableNameFor(targetZero) + " AS " + targetAlias
	sb.JoinWithOption(sqlbuilder.LeftJoin, table, targetOn)

	return nil
}

func zeroOf(t reflect.Type) interface{} {
	return reflect.New(t).Elem().Interface()
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
