// storefront — терминальный клиент rental-API.
//
// Использование:
//
//	storefront [--config path] <command> [args]
//
// Команды: register, login, logout, me, properties, property, book, bookings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pribylovaa/go-rental-storefront/internal/client"
	"github.com/pribylovaa/go-rental-storefront/internal/config"
	"github.com/pribylovaa/go-rental-storefront/internal/models"
	"github.com/pribylovaa/go-rental-storefront/internal/session"
	"github.com/pribylovaa/go-rental-storefront/internal/storage"
	filestore "github.com/pribylovaa/go-rental-storefront/internal/storage/file"
	"github.com/pribylovaa/go-rental-storefront/internal/storage/memory"
	redisstore "github.com/pribylovaa/go-rental-storefront/internal/storage/redis"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, closeFn, err := buildClient(cfg, log)
	if err != nil {
		log.Error("client_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer closeFn()

	if err := run(ctx, c, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildClient собирает клиент поверх выбранного durable-бэкенда.
// Session-хранилище всегда in-memory: access-токен живёт только
// в рамках процесса, как того требует модель хранения кред.
func buildClient(cfg *config.Config, log *slog.Logger) (*client.Client, func(), error) {
	var (
		durable storage.Store
		closeFn = func() {}
	)

	switch cfg.Storage.Backend {
	case "redis":
		st, err := redisstore.New(cfg.Storage.RedisURL, cfg.Storage.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("redis storage: %w", err)
		}

		durable = st
		closeFn = func() {
			if cerr := st.Close(); cerr != nil {
				log.Warn("redis_close_failed", slog.String("err", cerr.Error()))
			}
		}
	case "file":
		durable = filestore.New(cfg.Storage.Path)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	sess := session.New(memory.New(), durable)

	c := client.New(cfg.API.BaseURL, sess, client.Options{
		EarlyRefreshMargin: cfg.Auth.EarlyRefreshMargin,
		HTTPClient:         httpClient(cfg.API.Timeout),
	})

	return c, closeFn, nil
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &http.Client{Timeout: timeout}
}

func run(ctx context.Context, c *client.Client, cmd string, args []string) error {
	switch cmd {
	case "register":
		return cmdRegister(ctx, c, args)
	case "login":
		return cmdLogin(ctx, c, args)
	case "logout":
		return c.Logout(ctx)
	case "me":
		return cmdMe(ctx, c)
	case "properties":
		return cmdProperties(ctx, c, args)
	case "property":
		return cmdProperty(ctx, c, args)
	case "book":
		return cmdBook(ctx, c, args)
	case "bookings":
		return cmdBookings(ctx, c)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdRegister(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	phone := fs.String("phone", "", "phone (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *password == "" {
		return fmt.Errorf("register: --email and --password are required")
	}

	res, err := c.Register(ctx, client.RegisterParams{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Phone:    *phone,
	})
	if err != nil {
		return err
	}

	if res.User != nil {
		fmt.Printf("registered: %s <%s>\n", res.User.Name, res.User.Email)
	} else {
		fmt.Println("registered")
	}
	fmt.Println("now run: storefront login --email ... --password ...")

	return nil
}

func cmdLogin(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *password == "" {
		return fmt.Errorf("login: --email and --password are required")
	}

	res, err := c.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	if res.User != nil {
		fmt.Printf("logged in as %s <%s>\n", res.User.Name, res.User.Email)
	} else {
		fmt.Println("logged in")
	}

	return nil
}

func cmdMe(ctx context.Context, c *client.Client) error {
	user, err := c.Me(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("id:    %d\nname:  %s\nemail: %s\n", user.ID, user.Name, user.Email)
	if user.Phone != "" {
		fmt.Printf("phone: %s\n", user.Phone)
	}
	fmt.Printf("role:  %s\n", user.Role)

	return nil
}

func cmdProperties(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("properties", flag.ContinueOnError)
	city := fs.String("city", "", "filter by city")
	minPrice := fs.Float64("min-price", 0, "minimum price")
	maxPrice := fs.Float64("max-price", 0, "maximum price")
	propType := fs.String("type", "", "property type")
	gender := fs.String("gender", "", "gender restriction")
	sortBy := fs.String("sort", "", "sort: price_asc | price_desc")
	page := fs.Int("page", 0, "page number")
	perPage := fs.Int("per-page", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := c.ListProperties(ctx, client.ListPropertiesParams{
		City:     *city,
		MinPrice: *minPrice,
		MaxPrice: *maxPrice,
		Type:     *propType,
		Gender:   *gender,
		Sort:     *sortBy,
		Page:     *page,
		PerPage:  *perPage,
	})
	if err != nil {
		return err
	}

	fmt.Printf("total: %d (page %d, per page %d)\n", result.Total, result.Page, result.PerPage)
	for _, p := range result.Items {
		fmt.Printf("  #%d  %-30s  %s, %s  %.0f ₽/мес\n", p.ID, p.Title, p.City, p.Locality, p.Price)
	}

	return nil
}

func cmdProperty(ctx context.Context, c *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: storefront property <id>")
	}

	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("property: invalid id %q", args[0])
	}

	d, err := c.PropertyByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("#%d %s\n%s\n", d.ID, d.Title, d.Description)
	fmt.Printf("city: %s, %s\ntype: %s (%s)\nprice: %.0f ₽/мес\n",
		d.City, d.Locality, d.Type, d.Gender, d.Price)
	fmt.Printf("host: %s", d.Host.Name)
	if d.Host.Phone != "" {
		fmt.Printf(" (%s)", d.Host.Phone)
	} else {
		fmt.Printf(" (войдите, чтобы увидеть телефон)")
	}
	fmt.Println()

	return nil
}

func cmdBook(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	propertyID := fs.Int64("property", 0, "property id")
	start := fs.String("from", "", "start date (YYYY-MM-DD)")
	end := fs.String("to", "", "end date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *propertyID == 0 || *start == "" || *end == "" {
		return fmt.Errorf("book: --property, --from and --to are required")
	}

	if _, err := time.Parse(models.BookingDateLayout, *start); err != nil {
		return fmt.Errorf("book: invalid --from date %q", *start)
	}
	if _, err := time.Parse(models.BookingDateLayout, *end); err != nil {
		return fmt.Errorf("book: invalid --to date %q", *end)
	}

	b, err := c.CreateBooking(ctx, client.BookingParams{
		PropertyID: *propertyID,
		StartDate:  *start,
		EndDate:    *end,
	})
	if err != nil {
		return err
	}

	fmt.Printf("booking #%d created: property %d, %s — %s\n", b.ID, b.PropertyID, b.StartDate, b.EndDate)

	return nil
}

func cmdBookings(ctx context.Context, c *client.Client) error {
	items, err := c.MyBookings(ctx)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("no bookings")
		return nil
	}

	for _, b := range items {
		fmt.Printf("  #%d  property %d  %s — %s\n", b.ID, b.PropertyID, b.StartDate, b.EndDate)
	}

	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: storefront [--config path] <command> [args]

commands:
  register    --name --email --password [--phone]
  login       --email --password
  logout
  me
  properties  [--city --min-price --max-price --type --gender --sort --page --per-page]
  property    <id>
  book        --property --from --to
  bookings`)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
}
