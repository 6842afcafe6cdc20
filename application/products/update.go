package products

import (
	"fmt"
	"sort"

	"products-api/application/ports"
	apperrors "products-api/pkg/errors"
	"products-api/pkg/utils"
)

// DefaultUpdatableFields is the allow-list used when none is configured.
var DefaultUpdatableFields = []string{"name", "description", "price"}

// UpdateRequest is one of the accepted partial-update shapes. Every shape
// reduces to a mapping of attribute name to new value.
type UpdateRequest interface {
	Attributes() map[string]interface{}
}

// FixedFields updates the classic product attributes. Absent (or null)
// members are left untouched.
type FixedFields struct {
	Name        interface{} `json:"name"`
	Description interface{} `json:"description"`
	Price       interface{} `json:"price"`
}

func (f FixedFields) Attributes() map[string]interface{} {
	attrs := make(map[string]interface{}, 3)
	if f.Name != nil {
		attrs["name"] = f.Name
	}
	if f.Description != nil {
		attrs["description"] = f.Description
	}
	if f.Price != nil {
		attrs["price"] = f.Price
	}
	return attrs
}

// SingleField updates one attribute.
type SingleField struct {
	Key   string
	Value interface{}
}

func (s SingleField) Attributes() map[string]interface{} {
	return map[string]interface{}{s.Key: s.Value}
}

// Fields updates an arbitrary set of attributes.
type Fields map[string]interface{}

func (f Fields) Attributes() map[string]interface{} {
	return map[string]interface{}(f)
}

type updateCommand struct {
	ID     string                 `validate:"required"`
	Fields map[string]interface{} `validate:"required,min=1,dive,keys,fieldname,endkeys"`
}

// updateFields validates req against the allow-list and returns the
// attributes to write.
func (f *Facade) updateFields(id string, req UpdateRequest) (map[string]interface{}, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("fields is required")
	}
	fields := req.Attributes()
	if err := utils.ValidateStruct(updateCommand{ID: id, Fields: fields}); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == ports.KeyAttribute {
			return nil, apperrors.NewValidationError("attribute id cannot be updated")
		}
		if _, ok := f.updatable[name]; !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("attribute %q is not updatable", name))
		}
	}
	return fields, nil
}
