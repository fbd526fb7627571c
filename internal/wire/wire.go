//go:build wireinject
// +build wireinject

package wire

import (
	chathandler "github.com/PoofyPloop/chatapp/internal/chat/handler"
	chatrepo "github.com/PoofyPloop/chatapp/internal/chat/repository"
	chatservice "github.com/PoofyPloop/chatapp/internal/chat/service"
	"github.com/PoofyPloop/chatapp/internal/common"
	"github.com/PoofyPloop/chatapp/internal/config"
	"github.com/PoofyPloop/chatapp/internal/dbmysql"
	"github.com/PoofyPloop/chatapp/internal/fanout"
	"github.com/PoofyPloop/chatapp/internal/notif"
	"github.com/PoofyPloop/chatapp/internal/presence"

	"github.com/google/wire"
	"gorm.io/gorm"
)

type Application struct {
	Config          *config.Config
	DB              *gorm.DB
	Hub             *fanout.Hub
	PresenceHandler *presence.Handler
	ChatHandler     *chathandler.ChatHandler
	NotifHandler    *notif.Handler
	EventsHandler   *fanout.EventsHandler
	Reaper          *presence.Reaper
}

func InitializeApplication() (*Application, error) {
	wire.Build(
		config.Load,
		dbmysql.NewMySQL,
		ProvideHub,
		wire.Bind(new(common.Publisher), new(*fanout.Hub)),
		presence.NewUserRepository,
		presence.NewPresenceService,
		presence.NewHandler,
		chatrepo.NewChatRepository,
		chatservice.NewChatService,
		chathandler.NewChatHandler,
		notif.NewNotificationRepository,
		notif.NewNotificationService,
		notif.NewHandler,
		fanout.NewEventsHandler,
		ProvideReaper,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}

func ProvideHub(cfg *config.Config) *fanout.Hub {
	return fanout.NewHub(cfg.Fanout.SubscriberBuffer)
}

// ProvideReaper hands the chat service in as the message purger so reap
// cascades pass through its per-user append barrier.
func ProvideReaper(
	repo presence.UserRepository,
	chatService chatservice.ChatService,
	publisher common.Publisher,
	cfg *config.Config,
) *presence.Reaper {
	return presence.NewReaper(repo, chatService, publisher, cfg)
}
