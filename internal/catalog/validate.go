package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/pointshop/internal/domain"
)

// validateItem checks a fully merged item. Role items are normalized to a
// single use and non-role items lose any role level.
func (s *service) validateItem(item *domain.CatalogItem) error {
	if !item.Kind.Valid() {
		return &domain.ValidationError{Field: FieldKind, Message: ErrMsgUnknownKind, Kind: domain.ErrInvalidKind}
	}

	if err := s.validate.Struct(item); err != nil {
		return toValidationError(err)
	}

	switch item.Kind {
	case domain.KindCommand:
		if item.Command == "" {
			return &domain.ValidationError{Field: FieldCommand, Message: ErrMsgCommandRequired, Kind: domain.ErrMissingCommand}
		}
	case domain.KindRole:
		if item.RoleLevel == nil || *item.RoleLevel < domain.MinRoleLevel || *item.RoleLevel > domain.MaxRoleLevel {
			return &domain.ValidationError{Field: FieldRoleLevel, Message: ErrMsgRoleLevelRange, Kind: domain.ErrInvalidRoleLevel}
		}
		item.MaxUses = 1
	}
	if item.Kind != domain.KindRole {
		item.RoleLevel = nil
	}

	if item.MaxUses < 1 {
		return &domain.ValidationError{Field: FieldMaxUses, Message: ErrMsgMaxUsesTooLow}
	}
	return nil
}

// toValidationError reports the first failing struct field
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	fe := verrs[0]
	field := jsonFieldName(fe.Field())
	msg := fmt.Sprintf(ErrMsgFieldInvalid, fe.Tag())
	switch {
	case field == FieldStock:
		msg = ErrMsgStockTooLow
	case fe.Tag() == "gte":
		msg = ErrMsgNegative
	case fe.Tag() == "required":
		msg = "is required"
	case fe.Tag() == "max":
		msg = fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return &domain.ValidationError{Field: field, Message: msg}
}

var structFieldNames = map[string]string{
	"CooldownMinutes": FieldCooldown,
	"MaxUses":         FieldMaxUses,
	"RoleLevel":       FieldRoleLevel,
}

func jsonFieldName(structField string) string {
	if name, ok := structFieldNames[structField]; ok {
		return name
	}
	return strings.ToLower(structField)
}

func validateQuery(q ListQuery) error {
	if q.View != domain.ViewStorefront && q.View != domain.ViewAdmin {
		return &domain.ValidationError{Field: FieldView, Message: ErrMsgUnknownView}
	}
	if q.Kind != "" && !q.Kind.Valid() {
		return &domain.ValidationError{Field: FieldKind, Message: ErrMsgUnknownKind, Kind: domain.ErrInvalidKind}
	}
	if q.Page < 1 {
		return &domain.ValidationError{Field: FieldPage, Message: ErrMsgPageTooLow}
	}
	if q.PageSize < 1 || q.PageSize > domain.MaxPageSize {
		return &domain.ValidationError{Field: FieldPageSize, Message: ErrMsgPageSizeRange}
	}
	return nil
}
