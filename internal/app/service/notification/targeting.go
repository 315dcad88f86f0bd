package notification

import (
	"fmt"
	"strings"

	"github.com/oceanview/backend/pkg/types"
)

// entityTarget decides who a notification for a given event reaches.
var entityTarget = map[types.EntityType]types.MessageTarget{
	types.EntityTypeServiceRegister: types.MessageTargetAdmin,
	types.EntityTypeServiceReissue:  types.MessageTargetAdmin,
	types.EntityTypeServiceApproved: types.MessageTargetResident,
	types.EntityTypeServiceRejected: types.MessageTargetResident,
	types.EntityTypeReissueApproved: types.MessageTargetResident,
	types.EntityTypeReissueRejected: types.MessageTargetResident,
	types.EntityTypeFeedbackPost:    types.MessageTargetAdmin,
	types.EntityTypeProofPayment:    types.MessageTargetAdmin,
	types.EntityTypeProofApproved:   types.MessageTargetResident,
	types.EntityTypeProofRejected:   types.MessageTargetResident,
	types.EntityTypeNewsPost:        types.MessageTargetResidents,
	types.EntityTypeInvoiceCreate:   types.MessageTargetResident,
	types.EntityTypeLockerItemAdd:   types.MessageTargetResident,
	types.EntityTypeChatMessage:     types.MessageTargetResident,
}

// TargetOf returns the audience for an entity type, defaulting to ADMIN.
func TargetOf(entityType types.EntityType) types.MessageTarget {
	if t, ok := entityTarget[entityType]; ok {
		return t
	}
	return types.MessageTargetAdmin
}

// adminLinks maps entity types that staff act on to their console pages.
var adminLinks = map[types.EntityType]string{
	types.EntityTypeServiceRegister: "service/serviceregistration",
	types.EntityTypeServiceReissue:  "service/reissuecard",
	types.EntityTypeFeedbackPost:    "feedback/feedback",
	types.EntityTypeProofPayment:    "invoice/proofimage",
}

// DeepLink renders the staff console URL for an actionable notification, or
// "" when the entity type has no console page.
func DeepLink(adminHost string, entityType types.EntityType, entityID string) string {
	path, ok := adminLinks[entityType]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s/admin/%s/%s/change/", adminHost, path, entityID)
}

// FormatMessage renders the push title for an event. actor is the display
// name of whoever triggered it, object names the thing acted on (service
// label, feedback title, formatted amount).
func FormatMessage(entityType types.EntityType, actor, object string) string {
	action := strings.ToLower(entityType.Label())
	switch entityType {
	case types.EntityTypeServiceRegister, types.EntityTypeServiceReissue,
		types.EntityTypeProofPayment:
		return fmt.Sprintf("%s %s %s", actor, action, object)
	case types.EntityTypeServiceApproved, types.EntityTypeServiceRejected,
		types.EntityTypeReissueApproved, types.EntityTypeReissueRejected,
		types.EntityTypeProofApproved, types.EntityTypeProofRejected,
		types.EntityTypeLockerItemAdd:
		return fmt.Sprintf("Ban quản trị %s %s", action, object)
	case types.EntityTypeFeedbackPost:
		return fmt.Sprintf("%s %s: %s", actor, action, object)
	case types.EntityTypeNewsPost:
		return object
	case types.EntityTypeInvoiceCreate:
		return fmt.Sprintf("%s (%s)", entityType.Label(), object)
	case types.EntityTypeChatMessage:
		return fmt.Sprintf("%s: %s", actor, object)
	}
	return fmt.Sprintf("%s %s", actor, action)
}
