package services

import (
	"strings"
	"time"

	"nika.id/pkg/cache"
	"nika.id/pkg/events"
	"nika.id/pkg/payment"
	"nika.id/pkg/plans"
	"nika.id/pkg/storage"
	"nika.id/pkg/themes"
	"nika.id/repositories"

	"gorm.io/gorm"
)

// Options carries the shared infrastructure every service is built from.
type Options struct {
	DB          *gorm.DB
	Plans       *plans.Registry
	Themes      *themes.Registry
	Renderer    *themes.Renderer
	PageCache   *cache.PageCache
	Events      events.Publisher
	Storage     storage.Uploader
	Gateway     payment.Gateway
	Google      *GoogleOAuth
	JWTSecret   []byte
	BaseURL     string
	Development bool
}

// Services is the set handlers depend on.
type Services struct {
	Auth          IAuthService
	Users         IUserService
	Invitations   IInvitationService
	Public        IPublicService
	Submissions   ISubmissionService
	Guests        IGuestService
	Templates     ITemplateService
	Moderation    IModerationService
	Payments      IPaymentService
	Dashboard     IDashboardService
	Impersonation IImpersonationService
	Uploads       IUploadService
	Plans         *plans.Registry
	Google        *GoogleOAuth
	BaseURL       string
}

type repos struct {
	users        repositories.IUserRepository
	invitations  repositories.IInvitationRepository
	templates    repositories.ITemplateRepository
	rsvps        repositories.IRSVPRepository
	messages     repositories.IGuestMessageRepository
	transactions repositories.ITransactionRepository
	webhooks     repositories.IWebhookEventRepository
}

func newRepos(db *gorm.DB) repos {
	return repos{
		users:        repositories.NewUserRepository(db),
		invitations:  repositories.NewInvitationRepository(db),
		templates:    repositories.NewTemplateRepository(db),
		rsvps:        repositories.NewRSVPRepository(db),
		messages:     repositories.NewGuestMessageRepository(db),
		transactions: repositories.NewTransactionRepository(db),
		webhooks:     repositories.NewWebhookEventRepository(db),
	}
}

// New builds every service from opts, filling in the built-in plans and themes when unset.
func New(opts Options) *Services {
	if opts.Plans == nil {
		opts.Plans = plans.NewStaticRegistry()
	}
	if opts.Themes == nil {
		opts.Themes = themes.DefaultRegistry()
	}
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	r := newRepos(opts.DB)
	uploads := NewUploadService(opts.Storage)
	return &Services{
		Auth:          NewAuthService(opts.DB, r.users, r.invitations),
		Users:         NewUserService(opts, r),
		Invitations:   NewInvitationService(opts, r),
		Public:        NewPublicService(opts, r),
		Submissions:   NewSubmissionService(opts, r),
		Guests:        NewGuestService(opts.Plans, r),
		Templates:     NewTemplateService(opts, r),
		Moderation:    NewModerationService(opts, r),
		Payments:      NewPaymentService(opts, r),
		Dashboard:     NewDashboardService(r),
		Impersonation: NewImpersonationService(opts.JWTSecret, r.users),
		Uploads:       uploads,
		Plans:         opts.Plans,
		Google:        opts.Google,
		BaseURL:       strings.TrimRight(opts.BaseURL, "/"),
	}
}

var nowFunc = func() time.Time { return time.Now().UTC() }
