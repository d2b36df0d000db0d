package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/syncroom/internal/fanout"
	"github.com/sharetube/syncroom/internal/repository/media"
	mediaService "github.com/sharetube/syncroom/internal/service/media"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/randstr"
	"github.com/sharetube/syncroom/pkg/validator"
	"github.com/sharetube/syncroom/pkg/wsrouter"
	"golang.org/x/time/rate"
)

type iDispatcher interface {
	Do(ctx context.Context, name string, fn room.HandlerFunc) error
}

type iMediaService interface {
	ListVideos(context.Context) ([]media.Video, error)
	GetVideo(context.Context, string) (media.Video, error)
	Upload(context.Context, *mediaService.UploadParams) (media.Video, error)
}

type iBroadcaster interface {
	Attach(fanout.Client)
	Detach(connID string)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	StaticDir         string
	MediaDir          string
	ThumbnailDir      string
	MaxUploadBytes    int64
	MessagesPerSecond float64
	MessageBurst      int
}

type controller struct {
	dispatcher     iDispatcher
	mediaService   iMediaService
	broadcaster    iBroadcaster
	metricsHandler http.Handler
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	generator      iGenerator
	wsRouter       *wsrouter.WSRouter
	cfg            *Config
	logger         *slog.Logger
}

func NewController(
	dispatcher iDispatcher,
	mediaService iMediaService,
	broadcaster iBroadcaster,
	metricsHandler http.Handler,
	logger *slog.Logger,
	cfg *Config,
) *controller {
	c := &controller{
		dispatcher:     dispatcher,
		mediaService:   mediaService,
		broadcaster:    broadcaster,
		metricsHandler: metricsHandler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:  validator.NewValidator(),
		generator: randstr.New([]byte(randstr.Alphanumeric)),
		cfg:       cfg,
		logger:    logger,
	}
	c.wsRouter = c.getWSRouter()

	return c
}

func (c controller) newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(c.cfg.MessagesPerSecond), c.cfg.MessageBurst)
}
