package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the feed server in logs and response headers.
var UserAgent = "Go-Agenda/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Agenda"
	AppID             = "com.github.tartampluch.go-agenda"
	CLIName           = "agenda"
	KeyringService    = "com.github.tartampluch.go-agenda"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// Storage Layout
// -----------------------------------------------------------------------------

const (
	DataDirName        = "go-agenda"
	TasksFileName      = "calendar.json"
	RecurrenceFileName = "recurrency.json"
	SQLiteFileName     = "agenda.db"
	JSONIndent         = "    "

	BackendFile   = "file"
	BackendSQLite = "sqlite"

	// WatchDebounce collapses bursts of filesystem events caused by a single save.
	WatchDebounce = 200 * time.Millisecond
)

// -----------------------------------------------------------------------------
// Dates, Keywords & Task Rendering
// -----------------------------------------------------------------------------

const (
	// DateFormatKey is the canonical dd/mm/yyyy layout used for stored keys and display.
	DateFormatKey = "02/01/2006"
	DateFormatISO = "2006-01-02"

	KeywordToday     = "today"
	KeywordTomorrow  = "tomorrow"
	KeywordYesterday = "yesterday"

	DaysPerWeek = 7

	MarkDone       = "✓"
	MarkTodo       = "x"
	FormatTask     = "%s[%s]"
	FormatTaskLine = "%d) %s"
)

// Recurrence units as persisted in the recurrence resource.
const (
	UnitDaily  = "d"
	UnitWeekly = "w"
)

// -----------------------------------------------------------------------------
// Settings (viper keys, env, defaults)
// -----------------------------------------------------------------------------

const (
	SettingDataDir    = "data_dir"
	SettingBackend    = "backend"
	SettingLanguage   = "language"
	SettingServerPort = "server_port"
	SettingDebug      = "debug"

	EnvPrefix      = "AGENDA"
	ConfigFileName = "agenda"
	EnvFileName    = ".env"

	DefaultPort     = "18080"
	DefaultLanguage = "en"
	DefaultBackend  = BackendFile
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagConfig  = "config"
	FlagDataDir = "data-dir"
	FlagBackend = "backend"
	FlagLang    = "lang"
	FlagDebug   = "debug"
	FlagForce   = "force"
	FlagYes     = "yes"
	FlagRepeat  = "repeat"
	FlagEvery   = "every"
	FlagUntil   = "until"
	FlagOutput  = "output"
	FlagPort    = "port"

	FlagDescConfig  = "Path to a configuration file"
	FlagDescDataDir = "Directory holding the calendars"
	FlagDescBackend = "Storage backend (file or sqlite)"
	FlagDescLang    = "Interface language (en, fr)"
	FlagDescDebug   = "Enable debug logging to stderr"
	FlagDescForce   = "Overwrite an existing calendar"
	FlagDescYes     = "Do not ask for confirmation"
	FlagDescRepeat  = "Repeat the task daily or weekly"
	FlagDescEvery   = "Recurrence interval marker (must be positive when repeating)"
	FlagDescUntil   = "Last date of the recurrence (inclusive)"
	FlagDescOutput  = "Write the iCalendar file here instead of stdout"
	FlagDescPort    = "Port the feed server listens on"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyBanner            = "banner"
	TKeyGoodbye           = "goodbye"
	TKeyMainMenu          = "menu_main"
	TKeyCalendarMenu      = "menu_calendar"
	TKeyYourChoice        = "prompt_choice"
	TKeyInvalidOption     = "invalid_option"
	TKeyPromptCreateName  = "prompt_create_name"
	TKeyPromptOpenName    = "prompt_open_name"
	TKeyPromptDeleteName  = "prompt_delete_name"
	TKeyPromptDate        = "prompt_date"
	TKeyPromptDescription = "prompt_description"
	TKeyPromptRecurrent   = "prompt_recurrent"
	TKeyPromptUnit        = "prompt_unit"
	TKeyPromptUntil       = "prompt_until"
	TKeyPromptTaskNo      = "prompt_task_number"
	TKeyConfirmDelete     = "confirm_delete"  // Requires Name
	TKeyConfirmOverwrite  = "confirm_overwrite"
	TKeyAskCreate         = "ask_create"
	TKeyAborted           = "aborted"

	TKeyNoTasksDay      = "no_tasks_day"
	TKeyNoTasksWeek     = "no_tasks_week"
	TKeyNoTasksCalendar = "no_tasks_calendar"
	TKeyTodaySuffix     = "today_suffix"
	TKeyTaskAdded       = "task_added"
	TKeyTaskDeleted     = "task_deleted"
	TKeyTaskCompleted   = "task_completed"
	TKeyCalendarSaved   = "calendar_saved"
	TKeyCalendarLoaded  = "calendar_loaded"
	TKeyCalendarCreated = "calendar_created" // Requires Name
	TKeyCalendarDeleted = "calendar_deleted" // Requires Name
	TKeyCalendarsHeader = "calendars_header"
	TKeyNoCalendars     = "no_calendars"
	TKeyRecurringHeader = "recurring_header"
	TKeyNoRecurring     = "no_recurring"
	TKeyRecurringLine   = "recurring_line" // Requires Description, Unit, Start, End
	TKeyUnitDaily       = "unit_daily"
	TKeyUnitWeekly      = "unit_weekly"
	TKeyImported        = "imported"      // Requires Count
	TKeyExported        = "exported"      // Requires Path
	TKeyTokenSet        = "token_set"     // Requires Name, Token
	TKeyTokenCleared    = "token_cleared" // Requires Name
	TKeyServing         = "serving"       // Requires Name, Addr

	TKeyErrOutOfRange        = "err_out_of_range"
	TKeyErrNoSuchDate        = "err_no_such_date"
	TKeyErrInvalidRecurrence = "err_invalid_recurrence"
	TKeyErrStorage           = "err_storage"
	TKeyErrInvalidDate       = "err_invalid_date"
	TKeyErrEmptyDescription  = "err_empty_description"
	TKeyErrCalendarExists    = "err_calendar_exists"
	TKeyErrCalendarNotFound  = "err_calendar_not_found"
	TKeyErrInvalidName       = "err_invalid_name"
	TKeyErrInvalidNumber     = "err_invalid_number"
	TKeyErrGeneric           = "err_generic" // Requires Error

	TKeyMonday    = "weekday_monday"
	TKeyTuesday   = "weekday_tuesday"
	TKeyWednesday = "weekday_wednesday"
	TKeyThursday  = "weekday_thursday"
	TKeyFriday    = "weekday_friday"
	TKeySaturday  = "weekday_saturday"
	TKeySunday    = "weekday_sunday"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Agenda//Export//EN"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "goagenda"
	ICalToDo    = "VTODO"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDue        = "DUE"
	PropDTStamp    = "DTSTAMP"
	PropStatus     = "STATUS"
	PropCategories = "CATEGORIES"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	StatusCompleted   = "COMPLETED"
	StatusNeedsAction = "NEEDS-ACTION"
	CategoryRecurring = "recurring"

	// FormatUIDName is hashed into a name-based UUID: calendar|date|index|description.
	FormatUIDName = "%s|%s|%d|%s"
	FormatUID     = "%s@%s"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	RouteRoot          = "/"
	RouteCalendar      = "/{name}.ics"
	RouteMetrics       = "/metrics"
	RouteVarName       = "name"
	AddrSeparator      = ":"

	QueryToken   = "token"
	BearerPrefix = "Bearer "

	// TokenBytes is the amount of entropy in a generated feed token.
	TokenBytes = 32

	MetricFeedRequests     = "agenda_feed_requests_total"
	MetricFeedRequestsHelp = "Total number of calendar feed requests by status code"
	MetricLabelCode        = "code"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderServer          = "Server"
	HeaderAuthorization   = "Authorization"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrTaskOutOfRange     = "task number out of range"
	ErrNoSuchDate         = "no tasks for this date"
	ErrInvalidRecurrence  = "invalid recurrence"
	ErrStorageFault       = "storage fault"
	ErrMalformedData      = "malformed calendar data"
	ErrInvalidDate        = "invalid date"
	ErrEmptyDescription   = "task description is empty"
	ErrCalendarExists     = "calendar already exists"
	ErrCalendarNotFound   = "calendar not found"
	ErrResourceNotFound   = "calendar resource not found"
	ErrInvalidName        = "invalid calendar name"
	ErrBackendUnsupported = "unsupported storage backend"
	ErrSaveTasks          = "failed to save tasks"
	ErrSaveRecurrence     = "failed to save recurrence registry"
	ErrLoadTasks          = "failed to load tasks"
	ErrLoadRecurrence     = "failed to load recurrence registry"
	ErrRecurrenceExpand   = "failed to expand recurrence"
	ErrFrequencyUnknown   = "unknown frequency"
	ErrEndDateMissing     = "recurrence end date is required"
	ErrUnitMissing        = "--until and --every need --repeat"
	ErrIntervalNegative   = "recurrence must be a non-negative integer"
	ErrOpenDB             = "open db"
	ErrCreateSchema       = "create schema"
	ErrImportParse        = "YAML parse error"
	ErrImportEmpty        = "no tasks found in YAML"
	ErrImportEntry        = "import entry"
	ErrICalEncode         = "failed to encode iCalendar data"
	ErrServerStartup      = "server startup failed"
	ErrServerShutdown     = "server shutdown failed"
	ErrPortRequired       = "server port is required"
	ErrWriteResp          = "failed to write response body"
	ErrLocalesAccess      = "failed to access embedded locales"
	ErrLocaleLoad         = "failed to load locale file"
	ErrLogFile            = "failed to open log file"
	ErrCacheDir           = "could not determine user cache dir"
	ErrCreateDir          = "could not create app cache dir"
	ErrDataDir            = "could not determine data dir"
	ErrConfigRead         = "failed to read configuration file"
	ErrConfigDecode       = "failed to decode configuration"
	ErrAppFailed          = "application failed unexpectedly"
	ErrWatch              = "calendar watcher failed"
	ErrKeyring            = "keyring access failed"
	ErrTokenGenerate      = "failed to generate token"
	ErrFeedRefresh        = "failed to refresh feed"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgUnauthorized = "Unauthorized"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	// StubVCalendar is the minimal valid iCalendar object used when a calendar has no tasks.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgAppStarting       = "Starting application"
	MsgAppStop           = "Application stopped"
	MsgCalendarLoaded    = "Calendar loaded"
	MsgCalendarEmpty     = "Calendar data empty or malformed, starting empty"
	MsgRecurrenceEmpty   = "Recurrence registry malformed, starting empty"
	MsgSkippedDate       = "Skipping entry with invalid date key"
	MsgSkippedRecurrence = "Skipping unreadable recurrence record"
	MsgCalendarSaved     = "Calendar saved"
	MsgRecurrenceAdded   = "Recurrence expanded"
	MsgCalendarCreated   = "Calendar created"
	MsgCalendarDeleted   = "Calendar deleted"
	MsgExportSuccess     = "Calendar export successful"
	MsgServerListen      = "HTTP server listening"
	MsgServerStop        = "Shutting down HTTP server..."
	MsgCacheUpdated      = "Calendar cache updated"
	MsgUnauthorized      = "Rejected feed request with bad token"
	MsgLocaleSkip        = "Skipping non-locale file"
	MsgLocaleBadName     = "Skipping malformed locale filename"
	MsgLocaleLoaded      = "Locale loaded successfully"
	MsgTransMissing      = "Missing translation key"
	MsgWatchStart        = "Watching calendar for changes"
	MsgWatchReload       = "Calendar changed on disk, reloading feed"
	MsgImportDone        = "Import finished"
	MsgTokenStored       = "Feed token stored in keyring"
	MsgConfigFileAbsent  = "No configuration file found, using defaults"
	MsgLogWarning        = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent   = "component"
	LogKeyError       = "error"
	LogKeyFile        = "file"
	LogKeyLang        = "lang"
	LogKeyKey         = "key"
	LogKeyPort        = "port"
	LogKeyCalendar    = "calendar"
	LogKeyDate        = "date"
	LogKeyDescription = "description"
	LogKeyCount       = "count"
	LogKeyDays        = "days"
	LogKeyPath        = "path"
	LogKeyBackend     = "backend"
	LogKeyUnit        = "unit"
	LogKeyOccurrences = "occurrences"
	LogKeyStatus      = "status"
	LogKeySizeBytes   = "size_bytes"
	LogKeyETag        = "etag"
	LogKeyEvent       = "event"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompCalendar = "calendar"
	CompStore    = "store"
	CompWatcher  = "watcher"
	CompICS      = "ics"
	CompServer   = "server"
	CompSecret   = "secret"
	CompImporter = "importer"
	CompI18n     = "i18n"
	CompCLI      = "cli"
	CompMain     = "main"
)
