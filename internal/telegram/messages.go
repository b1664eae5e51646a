package telegram

// All user-facing Telegram strings in one place.

// ── Help ────────────────────────────────────────────────────────────

const msgHelp = `<b>Downtime panel bot</b>

/status - current server status
/events [type] - active and upcoming events

<b>Admins:</b>
/downtime start | end | tz | title - schedule maintenance
/extenddowntime +2h [| tz] - move the end time
/cleardowntime - remove the schedule
/wizard - schedule step by step
/panel - post a status panel here
/eventpanel type - post an event panel here
/updateevents - refresh event panels
/cancel - stop the wizard`

// ── Panel ───────────────────────────────────────────────────────────

const (
	emojiHeart       = "💗"
	emojiOnline      = "💕"
	emojiMaintenance = "💝"
	emojiTime        = "💞"

	btnCheckStatus = emojiHeart + " Check Status"
	cbCheckStatus  = "check_status"

	alertLimit = 200
)

// ── Generic / errors ────────────────────────────────────────────────

const (
	msgError          = "Something went wrong. Please try again later."
	msgGroupOnly      = "This command only works in groups."
	msgAdminOnly      = "Only chat administrators can use this command."
	msgPanelFailed    = "I could not post the panel here. Make sure I can send messages in this chat."
	msgCleared        = "Downtime cleared."
	msgEventsUpdated  = emojiHeart + " Event panels updated!"
)

// ── Scheduling ──────────────────────────────────────────────────────

const (
	msgDowntimeUsage = "Usage: <code>/downtime start | end | tz | title</code>\n" +
		"Example: <code>/downtime 2/15 9pm | 2/15 11pm | EST | Patch 2.1</code>"
	msgExtendUsage = "Usage: <code>/extenddowntime +2h</code> or <code>/extenddowntime 2/15 11pm | EST</code>"

	msgDowntimeSet = emojiHeart + " Downtime set: <b>%s</b>\nStart: %s\nEnd: %s\n(Entered in %s)"
	msgExtended    = emojiHeart + " <b>Downtime extended!</b>\n\nPrevious End: %s\nNew End: %s"

	msgInvalidTimezone = emojiHeart + " <b>Invalid timezone</b>\n\n" +
		"<b>Common timezones:</b>\n" +
		"• <code>EST</code>, <code>CST</code>, <code>MST</code>, <code>PST</code> (US)\n" +
		"• <code>UTC</code>, <code>GMT</code>\n" +
		"• <code>America/New_York</code>, <code>Europe/London</code>\n" +
		"• <code>GMT-05:00</code>, <code>UTC+05:30</code> (offset format)\n\n" +
		"<b>Your input:</b> <code>%s</code>"

	msgInvalidTimeFormat = emojiHeart + " <b>Invalid time format</b>\n\n" +
		"<b>Supported formats:</b>\n%s\n\n" +
		"<b>Your input:</b>\n%s"

	msgInvalidRange = emojiHeart + " <b>End time must be after start time</b>\n\n" +
		"Start: %s\nEnd: %s\n\nPlease check your times and try again."

	msgInvalidDuration = emojiHeart + " <b>Invalid duration format</b>\n\n" +
		"<b>Examples:</b> <code>+2h</code>, <code>+1h30m</code>, <code>+30m</code>\n\n" +
		"<b>Your input:</b> <code>%s</code>"

	msgNoActiveWindow = emojiHeart + " <b>No active downtime to extend</b>\n\n" +
		"Use /downtime to set a new downtime window."

	msgInvalidCategory = emojiHeart + " <b>Invalid event type</b>\n\nValid types: %s"
)

// ── Wizard ──────────────────────────────────────────────────────────

const (
	msgWizardTimezone = "Step 1/4: which timezone are you entering times in? (e.g. <code>EST</code>, <code>Europe/London</code>, <code>UTC+05:30</code>, or <code>-</code> for UTC)\n\nSend <code>cancel</code> at any time to stop."
	msgWizardStart    = "Step 2/4: when does maintenance start? (e.g. <code>2/15 9:00 PM</code>)"
	msgWizardEnd      = "Step 3/4: when does it end?"
	msgWizardTitle    = "Step 4/4: title? Send <code>skip</code> for the default."
	msgWizardCancel   = "Wizard cancelled. Nothing was changed."
	msgWizardTimeout  = "The downtime wizard timed out. Nothing was changed."
	msgWizardNone     = "There is nothing to cancel."
)

// ── Events ──────────────────────────────────────────────────────────

const (
	msgNoEvents    = "No active or upcoming %s at this time.\n\nCheck back later for new events!"
	msgNoEventsAll = "No active or upcoming events at this time.\n\nCheck back later!"
	titleAllEvents = "📅 All Events"
)
