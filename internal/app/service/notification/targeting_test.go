package notification

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oceanview/backend/pkg/types"
)

func TestTargetOf(t *testing.T) {
	tests := []struct {
		entityType types.EntityType
		want       types.MessageTarget
	}{
		{types.EntityTypeServiceRegister, types.MessageTargetAdmin},
		{types.EntityTypeServiceApproved, types.MessageTargetResident},
		{types.EntityTypeFeedbackPost, types.MessageTargetAdmin},
		{types.EntityTypeProofPayment, types.MessageTargetAdmin},
		{types.EntityTypeNewsPost, types.MessageTargetResidents},
		{types.EntityTypeInvoiceCreate, types.MessageTargetResident},
		{types.EntityTypeChatMessage, types.MessageTargetResident},
		// Unknown events fall back to the admin feed.
		{types.EntityType("UNKNOWN"), types.MessageTargetAdmin},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, TargetOf(tt.entityType), string(tt.entityType))
	}
}

func TestDeepLink(t *testing.T) {
	host := "https://admin.oceanview.example.com"

	require.Equal(t,
		host+"/admin/service/serviceregistration/reg-1/change/",
		DeepLink(host, types.EntityTypeServiceRegister, "reg-1"))
	require.Equal(t,
		host+"/admin/feedback/feedback/fb-1/change/",
		DeepLink(host, types.EntityTypeFeedbackPost, "fb-1"))
	require.Equal(t,
		host+"/admin/invoice/proofimage/p-1/change/",
		DeepLink(host, types.EntityTypeProofPayment, "p-1"))

	// Pure informational events carry no console link.
	require.Empty(t, DeepLink(host, types.EntityTypeServiceApproved, "reg-1"))
	require.Empty(t, DeepLink(host, types.EntityTypeNewsPost, "n-1"))
}

func TestFormatMessage(t *testing.T) {
	require.Equal(t,
		"240001 - Nguyễn Văn A đăng ký dịch vụ Thẻ cư dân",
		FormatMessage(types.EntityTypeServiceRegister, "240001 - Nguyễn Văn A", "Thẻ cư dân"))
	require.Equal(t,
		"Ban quản trị đã duyệt đăng ký Thẻ cư dân",
		FormatMessage(types.EntityTypeServiceApproved, "", "Thẻ cư dân"))
	require.Equal(t,
		"Tin mới",
		FormatMessage(types.EntityTypeNewsPost, "", "Tin mới"))
	require.Equal(t,
		"Nguyễn Văn A: xin chào",
		FormatMessage(types.EntityTypeChatMessage, "Nguyễn Văn A", "xin chào"))
}
