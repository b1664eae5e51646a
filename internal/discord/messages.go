package discord

// All user-facing Discord strings in one place.

// ── Panel look ──────────────────────────────────────────────────────

const (
	colorOnline      = 0xFFADD8
	colorMaintenance = 0xFF7AB8
	colorEvents      = 0xFFC8DC

	emojiHeart       = "💗"
	emojiOnline      = "💕"
	emojiMaintenance = "💝"
	emojiTime        = "💞"

	footerPanel      = "Status Panel"
	footerDetail     = "Times shown in your local timezone"
	footerEvents     = "Event Calendar"
	footerAllEvents  = "Event Calendar • Use /eventpanel to post detailed panels"
	buttonCheckLabel = "Check Status"
	buttonCheckID    = "check_status"
)

// ── Commands ────────────────────────────────────────────────────────

const (
	descDowntime       = "[MOD] Set a maintenance window"
	descDowntimeStart  = "Start time (e.g., 2/1/26 2:30 PM or 4pm)"
	descDowntimeEnd    = "End time (same formats)"
	descDowntimeTZ     = "Timezone (autocomplete)"
	descDowntimeTitle  = "Optional custom title"
	descExtend         = "[MOD] Extend the downtime end time"
	descExtendNewEnd   = "New end time (e.g., 2/1/26 6pm) OR +duration (e.g., +2h)"
	descClear          = "[MOD] Clear scheduled downtime"
	descPanel          = "[MOD] Post the status panel in this channel"
	descStatus         = "Check server status"
	descWizard         = "[MOD] Set a maintenance window with a form"
	descEventPanel     = "[MOD] Post an event panel in this channel"
	descEventCategory  = "Event type to display (e.g., resonance, quest, task)"
	descUpdateEvents   = "[MOD] Manually update all event panels"
	descPostAll        = "[MOD] Post all event panels in this channel"
	descEvents         = "View all active and upcoming events"
	descEventsCategory = "Optional: Filter by event type"
)

// ── Wizard modal ────────────────────────────────────────────────────

const (
	modalWizardID    = "downtime_wizard"
	modalTitle       = "Set Downtime"
	fieldStart       = "start"
	fieldEnd         = "end"
	fieldTZ          = "tz"
	fieldTitle       = "title"
	labelStart       = "Start"
	labelEnd         = "End"
	labelTZ          = "Timezone (optional)"
	labelTitle       = "Title (optional)"
	placeholderStart = "e.g. 2/15 9:00 PM or 2026-02-15 21:00"
	placeholderEnd   = "e.g. 2/15 11:00 PM or 2026-02-15 23:00"
	placeholderTZ    = "UTC, EST, America/New_York"
	placeholderTitle = "Patch 2.1 Update"
)

// ── Replies ─────────────────────────────────────────────────────────

const (
	msgGuildOnly      = "This command can only be used in a server."
	msgNotAllowed     = "This bot is restricted to approved servers."
	msgMissingRole    = "You need the @%s role to use this command."
	msgInternalError  = "An internal error occurred while running that command."
	msgPanelPosted    = "Panel posted."
	msgPanelFailed    = "Could not post the panel here. Check that I can view this channel, send messages and read message history."
	msgCleared        = "Downtime cleared."
	msgEventsUpdated  = emojiHeart + " Event panels updated successfully!"
	msgEventPanelDone = "%s Event panel posted for **%s**!"
	msgPostedAll      = emojiHeart + " Posted **%d** event panels!"

	msgDowntimeSet = emojiHeart + " Downtime set: %s\nStart: %s\nEnd: %s\n(Entered in %s)"
	msgExtended    = emojiHeart + " **Downtime extended!**\n\nPrevious End: %s\nNew End: %s"

	msgInvalidTimezone = emojiHeart + " **Invalid timezone**\n\n" +
		"**Common timezones:**\n" +
		"• `EST`, `CST`, `MST`, `PST` (US)\n" +
		"• `UTC`, `GMT`\n" +
		"• `America/New_York`, `Europe/London`\n" +
		"• `GMT-05:00`, `UTC+05:30` (offset format)\n\n" +
		"**Your input:** `%s`"

	msgInvalidTimeFormat = emojiHeart + " **Invalid time format**\n\n" +
		"**Supported formats:**\n%s\n\n" +
		"**Your input:**\n%s"

	msgInvalidRange = emojiHeart + " **End time must be after start time**\n\n" +
		"Start: %s\nEnd: %s\n\nPlease check your times and try again."

	msgInvalidDuration = emojiHeart + " **Invalid duration format**\n\n" +
		"**Examples:** `+2h`, `+1h30m`, `+30m`\n\n" +
		"**Your input:** `%s`"

	msgNoActiveWindow = emojiHeart + " **No active downtime to extend**\n\n" +
		"Use `/downtime` to set a new downtime window."

	msgInvalidCategory = emojiHeart + " **Invalid event type**\n\nValid types: %s"

	msgNoEvents    = "No active or upcoming %s at this time.\n\nCheck back later for new events!"
	msgNoEventsAll = "No active or upcoming events at this time.\n\nCheck back later!"
	titleAllEvents = "📅 All Events"
)
