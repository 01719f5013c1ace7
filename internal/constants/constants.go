package constants

import "time"

// DefaultPollInterval is how often a joined client fetches messages and the roster.
const DefaultPollInterval = 1 * time.Second

// DefaultRequestTimeout caps a single request to the chat service.
const DefaultRequestTimeout = 5 * time.Second

// LeaveTimeout bounds the best-effort leave notification.
const LeaveTimeout = 2 * time.Second

// DefaultRosterTimeout is how long the reference server keeps an inactive member on the roster.
const DefaultRosterTimeout = 5 * time.Minute

// SystemSender is the sender name the chat service uses for join and leave notices.
const SystemSender = "System"

// MaxNameLength limits display names accepted by the reference server.
const MaxNameLength = 64

// MaxContentBytes limits a single message body accepted by the reference server.
const MaxContentBytes = 4096

// MinEventBusBufferSize is the minimum buffer per subscriber channel.
const MinEventBusBufferSize = 256

// StopWaitTimeout bounds how long Close waits for in-flight ticks to drain.
const StopWaitTimeout = 5 * time.Second

// HistoryDisplayTimeFormat is used when printing archived messages.
const HistoryDisplayTimeFormat = "2006-01-02 15:04:05"
