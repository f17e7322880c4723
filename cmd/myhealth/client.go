package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/myhealth/myhealth/internal/config"
	"github.com/myhealth/myhealth/internal/domain/account"
	"github.com/myhealth/myhealth/internal/domain/arv"
	"github.com/myhealth/myhealth/internal/domain/blog"
	"github.com/myhealth/myhealth/internal/domain/customer"
	"github.com/myhealth/myhealth/internal/domain/doctor"
	"github.com/myhealth/myhealth/internal/domain/medicalhistory"
	"github.com/myhealth/myhealth/internal/domain/rating"
	"github.com/myhealth/myhealth/internal/domain/registration"
	"github.com/myhealth/myhealth/internal/domain/reminder"
	"github.com/myhealth/myhealth/internal/domain/schedule"
	"github.com/myhealth/myhealth/internal/domain/testresult"
	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

// cliSessionID names the single session the command-line client keeps in
// SESSION_DIR.
const cliSessionID = "cli"

var errSessionExpired = errors.New("phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại")

// cliEnv is what every client command needs: config, the persisted session
// and a backend client that reads its token from that session.
type cliEnv struct {
	cfg    *config.Config
	logger zerolog.Logger
	repo   session.Repository
	store  *session.Store
	client *apiclient.Client
}

func newCLIEnv() (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	repo, err := session.NewFileRepository(cfg.SessionDir)
	if err != nil {
		return nil, err
	}
	return &cliEnv{
		cfg:    cfg,
		logger: newLogger(cfg),
		repo:   repo,
		store:  session.NewStore(repo, cliSessionID, session.WithIdleTimeout(cfg.SessionIdleTimeout)),
		client: apiclient.New(cfg.BackendURL,
			apiclient.WithTimeout(cfg.HTTPTimeout),
			apiclient.WithUserAgent("myhealth-cli/"+version),
			apiclient.WithTokenSource(auth.ContextTokens{})),
	}, nil
}

// context loads the persisted session onto ctx. An idle or expired session
// is cleared and reported; a live one counts the command as activity.
func (e *cliEnv) context(ctx context.Context) (context.Context, error) {
	ctx = auth.WithStore(ctx, e.store)
	b, err := e.store.Load(ctx)
	if err != nil {
		return ctx, err
	}
	if b == nil {
		return ctx, nil
	}

	idle, err := e.store.IsExpired(ctx)
	if err != nil {
		return ctx, err
	}
	if idle || b.TokenExpired(time.Now()) {
		if err := e.store.Clear(ctx); err != nil {
			return ctx, err
		}
		return ctx, errSessionExpired
	}
	if err := e.store.Touch(ctx); err != nil {
		return ctx, err
	}
	return auth.WithBundle(ctx, b), nil
}

// requireSession is context for commands that need a signed-in user.
func (e *cliEnv) requireSession(ctx context.Context) (context.Context, error) {
	ctx, err := e.context(ctx)
	if err != nil {
		return ctx, err
	}
	if auth.BundleFromContext(ctx) == nil {
		return ctx, errors.New("chưa đăng nhập, hãy chạy: myhealth login")
	}
	return ctx, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func clientCmds() []*cobra.Command {
	return []*cobra.Command{
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		listCmd(),
		completeCmd(),
		watchCmd(),
		forgotPasswordCmd(),
		resetPasswordCmd(),
	}
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			svc := account.NewService(env.client, nil)
			b, err := svc.Login(cmd.Context(), env.store, apiclient.Credentials{Email: email, Password: password})
			if errors.Is(err, account.ErrWrongCredentials) {
				return errors.New("sai email hoặc mật khẩu")
			}
			if err != nil {
				return err
			}
			fmt.Printf("Đăng nhập thành công: %s (%s)\n", displayName(b), b.Role)
			fmt.Printf("Trang chính: %s\n", b.Role.LandingPath())
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	return cmd
}

func displayName(b *session.Bundle) string {
	if b.FullName != "" {
		return b.FullName
	}
	return b.Email
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			if err := account.NewService(env.client, nil).Logout(cmd.Context(), env.store); err != nil {
				return err
			}
			fmt.Println("Đã đăng xuất.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			ctx, err := env.context(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(account.NewService(env.client, nil).SessionInfo(ctx, env.store))
		},
	}
}

type lister func(ctx context.Context, p pagination.Params) (interface{}, error)

func page[T any](list func(context.Context, pagination.Params) (pagination.Page[T], error)) lister {
	return func(ctx context.Context, p pagination.Params) (interface{}, error) {
		return list(ctx, p)
	}
}

func listers(client *apiclient.Client, status string) map[string]lister {
	doctors := doctor.NewService(client)
	customers := customer.NewService(client)
	regimens := arv.NewService(client)
	histories := medicalhistory.NewService(client)
	results := testresult.NewService(client)
	registrations := registration.NewService(client)
	schedules := schedule.NewService(client)
	reminders := reminder.NewService(client)
	ratings := rating.NewService(client)
	posts := blog.NewService(client)

	byStatus := func(ctx context.Context, p pagination.Params) (pagination.Page[clinicmodels.Registration], error) {
		return registrations.List(ctx, status, p)
	}
	return map[string]lister{
		"doctors":         page(doctors.List),
		"customers":       page(customers.List),
		"arv":             page(regimens.List),
		"my-arv":          page(regimens.Mine),
		"histories":       page(histories.List),
		"my-histories":    page(histories.Mine),
		"test-results":    page(results.List),
		"my-results":      page(results.Mine),
		"registrations":   page(byStatus),
		"today":           page(registrations.Today),
		"schedules":       page(schedules.List),
		"my-schedules":    page(schedules.Mine),
		"reminders":       page(reminders.All),
		"reminders-today": page(reminders.Today),
		"ratings":         page(ratings.List),
		"blogs":           page(posts.List),
	}
}

func resourceNames(m map[string]lister) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List a resource page by page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			status, _ := cmd.Flags().GetString("status")
			all := listers(env.client, status)
			list, ok := all[args[0]]
			if !ok {
				return fmt.Errorf("unknown resource %q (one of: %s)", args[0], strings.Join(resourceNames(all), ", "))
			}

			ctx, err := env.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			q, _ := cmd.Flags().GetString("q")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("page-size")
			if !cmd.Flags().Changed("page-size") {
				size = env.cfg.PageSize
			}

			out, err := list(ctx, pagination.Params{Query: q, Page: page, PageSize: size})
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
	cmd.Flags().String("q", "", "Search term")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("page-size", pagination.DefaultPageSize, "Rows per page (defaults to PAGE_SIZE)")
	cmd.Flags().String("status", registration.StatusAll, "Registration status filter (pending, completed)")
	return cmd
}

func completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <registration-id>",
		Short: "Mark one of today's registrations as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid registration id %q", args[0])
			}
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			ctx, err := env.requireSession(cmd.Context())
			if err != nil {
				return err
			}

			page, err := registration.NewService(env.client).Complete(ctx, id, pagination.Params{Page: 1, PageSize: env.cfg.PageSize})
			if err != nil {
				return err
			}
			fmt.Printf("Đã hoàn thành lịch khám #%d. Còn lại %d lịch hôm nay.\n", id, page.TotalItems)
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the stored session and sign out when it goes idle",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			ok, err := env.store.Authenticated(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("chưa đăng nhập, hãy chạy: myhealth login")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			monitor := session.NewMonitor(env.repo, env.logger,
				session.WithCheckInterval(env.cfg.SessionCheckInterval),
				session.WithMonitorIdleTimeout(env.cfg.SessionIdleTimeout),
				session.OnExpire(func(context.Context, string) {
					fmt.Println(errSessionExpired.Error())
					cancel()
				}))

			fmt.Printf("Đang theo dõi phiên (hết hạn sau %s không hoạt động)...\n", env.cfg.SessionIdleTimeout)
			if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func forgotPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			email, _ := cmd.Flags().GetString("email")
			if err := account.NewService(env.client, nil).ForgotPassword(cmd.Context(), email); err != nil {
				return err
			}
			fmt.Println("Vui lòng kiểm tra email để đặt lại mật khẩu.")
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	return cmd
}

func resetPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCLIEnv()
			if err != nil {
				return err
			}
			var req account.ResetRequest
			req.Token, _ = cmd.Flags().GetString("token")
			req.NewPassword, _ = cmd.Flags().GetString("password")
			req.ConfirmPassword, _ = cmd.Flags().GetString("confirm")
			if err := account.NewService(env.client, nil).ResetPassword(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Println("Đặt lại mật khẩu thành công.")
			return nil
		},
	}
	cmd.Flags().String("token", "", "Reset token from the email")
	cmd.Flags().String("password", "", "New password")
	cmd.Flags().String("confirm", "", "Repeat the new password")
	return cmd
}
