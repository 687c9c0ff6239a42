package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Name policies accepted by NAME_POLICY.  The deployments this service
// replaces disagreed on whether a display name may contain spaces, so the
// rule is configurable instead of hard-coded.
const (
    NamePolicySingle = "single" // one token, letters only
    NamePolicyMulti  = "multi"  // letters with single spaces between tokens
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, bools for policy switches.
type Config struct {
    Env             string // application environment (e.g. "dev", "prod")
    Port            string // HTTP port to listen on
    DBUser          string // database username
    DBPass          string // database password (optional)
    DBHost          string // database host address
    DBPort          string // database port number
    DBName          string // database name
    JWTSecret       string // secret used to sign JWTs; no insecure fallback
    SessionTTLDays  int    // session token time-to-live in days
    ResetTTLMin     int    // reset token time-to-live in minutes
    BcryptCost      int    // bcrypt cost for password hashing
    FrontendBaseURL string // base URL used to build reset links

    SMTPHost string // SMTP relay host; empty disables outbound mail
    SMTPPort string // SMTP relay port
    SMTPUser string // SMTP auth username (optional)
    SMTPPass string // SMTP auth password (optional)
    MailFrom string // From address on outgoing mail

    GoogleClientID string // OAuth client id for ID-token audience checks; empty trusts the caller

    NamePolicy        string // NamePolicySingle or NamePolicyMulti
    SignupIssuesToken bool   // whether signup returns a session token
    RevealNotFound    bool   // whether login/forgot-password disclose account existence
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  JWT_SECRET in
// particular is required: running with a known default secret would make
// every issued token forgeable.
func Load() Config {
    cfg := Config{
        Env:             must("APP_ENV"),
        Port:            must("APP_PORT"),
        DBUser:          must("DB_USER"),
        DBPass:          os.Getenv("DB_PASS"), // empty allowed
        DBHost:          must("DB_HOST"),
        DBPort:          must("DB_PORT"),
        DBName:          must("DB_NAME"),
        JWTSecret:       must("JWT_SECRET"),
        SessionTTLDays:  intOr("SESSION_TTL_DAYS", 7),
        ResetTTLMin:     intOr("RESET_TOKEN_TTL_MIN", 60),
        BcryptCost:      intOr("BCRYPT_COST", 10),
        FrontendBaseURL: must("FRONTEND_BASE_URL"),

        SMTPHost: os.Getenv("SMTP_HOST"),
        SMTPPort: strOr("SMTP_PORT", "587"),
        SMTPUser: os.Getenv("SMTP_USER"),
        SMTPPass: os.Getenv("SMTP_PASS"),
        MailFrom: strOr("MAIL_FROM", "no-reply@localhost"),

        GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

        NamePolicy:        strOr("NAME_POLICY", NamePolicyMulti),
        SignupIssuesToken: boolOr("SIGNUP_ISSUES_TOKEN", false),
        RevealNotFound:    boolOr("REVEAL_ACCOUNT_EXISTENCE", true),
    }
    if cfg.NamePolicy != NamePolicySingle && cfg.NamePolicy != NamePolicyMulti {
        log.Fatalf("invalid NAME_POLICY: %q (want %q or %q)", cfg.NamePolicy, NamePolicySingle, NamePolicyMulti)
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// strOr returns the variable's value or a default when unset.
func strOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intOr returns the variable parsed as int or a default when unset.
// A set-but-unparsable value is a configuration mistake and is fatal.
func intOr(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}

// boolOr returns the variable parsed as bool or a default when unset.
func boolOr(key string, def bool) bool {
    switch os.Getenv(key) {
    case "":
        return def
    case "1", "true", "TRUE", "True", "yes", "on":
        return true
    case "0", "false", "FALSE", "False", "no", "off":
        return false
    }
    log.Fatalf("invalid bool for %s: %q", key, os.Getenv(key))
    return def
}
