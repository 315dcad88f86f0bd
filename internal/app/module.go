package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/oceanview/backend/internal/app/api/server"
	"github.com/oceanview/backend/internal/app/service/apartment"
	"github.com/oceanview/backend/internal/app/service/billing"
	"github.com/oceanview/backend/internal/app/service/chat"
	"github.com/oceanview/backend/internal/app/service/content"
	"github.com/oceanview/backend/internal/app/service/feedback"
	"github.com/oceanview/backend/internal/app/service/identity"
	"github.com/oceanview/backend/internal/app/service/locker"
	"github.com/oceanview/backend/internal/app/service/notification"
	"github.com/oceanview/backend/internal/app/service/registration"
	"github.com/oceanview/backend/internal/platform/db"
	"github.com/oceanview/backend/internal/platform/mail"
	"github.com/oceanview/backend/internal/platform/payment/momo"
	"github.com/oceanview/backend/internal/platform/payment/vnpay"
	"github.com/oceanview/backend/internal/platform/push"
	"github.com/oceanview/backend/internal/platform/redis"
	"github.com/oceanview/backend/internal/platform/sms"
	"github.com/oceanview/backend/pkg/config"
	"github.com/oceanview/backend/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	redis.Module,
	vnpay.Module,
	momo.Module,
	push.Module,
	sms.Module,
	mail.Module,
	identity.Module,
	apartment.Module,
	registration.Module,
	billing.Module,
	notification.Module,
	locker.Module,
	chat.Module,
	feedback.Module,
	content.Module,
	server.Module,
)
