package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"memebot/internal/adapters/generator"
	"memebot/internal/adapters/handler"
	"memebot/internal/adapters/sender"
	"memebot/internal/adapters/source"
	"memebot/internal/adapters/web"
	"memebot/internal/core/domain/command"
	"memebot/internal/core/service"

	"github.com/fsnotify/fsnotify"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.Info().Msg("starting memebot...")

	loadConfig()
	configureLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	token := viper.GetString("telegram.bot_token")
	opts := []bot.Option{
		bot.WithDefaultHandler(noOpHandler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing telegram bot")
	}

	s := sender.NewTelegram(b, sender.WithSendRate(viper.GetFloat64("telegram.send_rate")))

	webClient := web.NewClient(durationFromConfig("web.timeout"), viper.GetString("reddit.user_agent"))

	reddit := source.NewReddit(webClient, source.RedditConfig{
		BaseURL:          viper.GetString("reddit.base_url"),
		HotLimit:         viper.GetInt("reddit.hot_limit"),
		SearchSubreddits: viper.GetStringSlice("reddit.search_subreddits"),
		SearchLimit:      viper.GetInt("reddit.search_limit"),
		DefaultSubreddit: command.DefaultSelector,
	})

	contentSource := source.NewMux(reddit)
	contentSource.Handle(command.JokeSelector, source.NewJokes(webClient, viper.GetString("jokes.url")))

	if apiKey := viper.GetString("openrouter.api_key"); apiKey != "" {
		contentSource.Handle("ai", generator.NewOpenRouter(apiKey,
			viper.GetString("openrouter.model"),
			viper.GetString("openrouter.system_prompt")))
	} else {
		log.Info().Msg("no openrouter api key configured, ai selectors disabled")
		contentSource.Handle("ai", source.Disabled("ai", "no openrouter api key configured"))
	}

	stats := service.NewStats(service.DefaultHistorySize)

	scheduler := service.NewScheduler(contentSource, s, service.SchedulerOptions{
		MinInterval:       durationFromConfig("broadcast.min_interval"),
		MaxInterval:       durationFromConfig("broadcast.max_interval"),
		CancelGrace:       durationFromConfig("broadcast.cancel_grace"),
		ResumeOnConfigure: viper.GetBool("broadcast.resume_on_configure"),
		OnDeliver:         stats.RecordDelivery,
	})

	sessions := service.NewSessionStore(durationFromConfig("session.ttl"))

	auth, err := service.NewAuthorizer(s)
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing authorizer")
	}

	commandRegistry := &command.Registry{}

	commandRegistry.Register(command.NewHelp(commandRegistry, s, "/help"))
	commandRegistry.Register(command.NewMeme(contentSource, s, s, "/meme"))
	commandRegistry.Register(command.NewMemeSearch(reddit, sessions, s, s, "/meme_search"))
	commandRegistry.Register(command.NewTopMemes(reddit, s, s, "/top_memes"))
	commandRegistry.Register(command.NewMemesByNumber(reddit, s, s, "/memes_by_number"))
	commandRegistry.Register(command.NewRandomJoke(contentSource, s, s, "/random_joke"))
	commandRegistry.Register(command.NewSetChannel(scheduler, auth, s, "/setchannel"))
	commandRegistry.Register(command.NewStopMemes(scheduler, auth, s, "/stopmemes"))
	commandRegistry.Register(command.NewStartMemes(scheduler, auth, s, "/startmemes"))
	commandRegistry.Register(command.NewUnsetChannel(scheduler, auth, s, "/unsetchannel"))
	commandRegistry.Register(command.NewStatus(scheduler, s, "/status"))
	commandRegistry.Register(command.NewStats(stats, scheduler, s, "/meme", "/stats"))
	commandRegistry.Register(command.NewCommandHistory(stats, s, "/command_history"))
	commandRegistry.Register(command.NewDebug(scheduler, sessions, s, "/debug"))
	commandRegistry.Register(command.NewPing(s, s, "/ping"))

	handlerTimeout := durationFromConfig("handler.timeout")

	commandHandler := handler.NewCommand(commandRegistry, stats, handlerTimeout)
	callbackHandler := handler.NewCallback(handlerTimeout,
		command.NewRefresh(contentSource, s),
		command.NewPager(sessions, s))

	b.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, commandHandler.Handle)
	b.RegisterHandler(bot.HandlerTypePhotoCaption, "/", bot.MatchTypePrefix, commandHandler.Handle)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, callbackHandler.Handle)

	log.Info().Strs("commands", commandRegistry.ListCommands()).Msg("bot listening")
	b.Start(ctx)

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := scheduler.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("scheduler did not stop cleanly")
	}
	sessions.Stop()
}

func loadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

	viper.SetEnvPrefix("memebot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("bot.log_level", "info")
	viper.SetDefault("bot.log_format", "json")
	viper.SetDefault("telegram.send_rate", 20)
	viper.SetDefault("handler.timeout", "60s")
	viper.SetDefault("web.timeout", "15s")
	viper.SetDefault("reddit.base_url", "https://www.reddit.com")
	viper.SetDefault("reddit.user_agent", "memebot/1.0")
	viper.SetDefault("reddit.hot_limit", 50)
	viper.SetDefault("reddit.search_subreddits", []string{"memes", "dankmemes", "funny"})
	viper.SetDefault("reddit.search_limit", 5)
	viper.SetDefault("jokes.url", "https://v2.jokeapi.dev")
	viper.SetDefault("openrouter.model", "openai/gpt-4.1-mini")
	viper.SetDefault("broadcast.min_interval", "1s")
	viper.SetDefault("broadcast.max_interval", "0s")
	viper.SetDefault("broadcast.cancel_grace", "5s")
	viper.SetDefault("broadcast.resume_on_configure", false)
	viper.SetDefault("session.ttl", "15m")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		log.Warn().Msg("no config file found, using defaults and environment")
		return
	case err != nil:
		log.Fatal().Err(err).Msg("could not read config file")
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("config changed, reloading log level")
		configureLogger()
	})
	viper.WatchConfig()
}

func configureLogger() {
	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "trace":
		logLevel = zerolog.TraceLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "info":
		logLevel = zerolog.InfoLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if viper.GetString("bot.log_format") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func durationFromConfig(key string) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		log.Panic().Err(err).Str("key", key).Msg("invalid duration in config")
	}

	return d
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
