package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"schedule-bot/internal/model"
	"schedule-bot/internal/repository"
	"schedule-bot/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageCourse
	stageLecturer
	stageRoom
	stageDay
	stageStartTime
	stageEndTime
	stageRemind
	stageSemester
)

const (
	cbEditPrefix   = "edit:"
	cbDeletePrefix = "delete:"
)

const (
	btnSkip         = "⏭️ Пропустить"
	btnConfirm      = "✅ Подтвердить"
	btnCancel       = "↩️ Отмена"
	btnCancelDialog = "⏪ Отменить ввод"
	menuLabelNew    = "➕ Новая пара"
	menuLabelToday  = "📅 Сегодня"
	menuLabelWeek   = "🗓 Неделя"
	menuLabelHelp   = "ℹ️ Помощь"
)

const defaultRemindMinutes = 10

type conversationState struct {
	stage   conversationStage
	input   service.EntryInput
	editing bool
}

type confirmationAction int

const (
	actionDelete confirmationAction = iota
	actionClear
)

type confirmationRequest struct {
	entryID string
	action  confirmationAction
}

// Bot is the presentation layer: it maps Telegram chats onto the schedule
// service and doubles as the delivery sink for reminders.
type Bot struct {
	api           *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	scheduleSvc   *service.ScheduleService
	reminders     *service.ReminderScheduler
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, userRepo *repository.UserRepository, scheduleSvc *service.ScheduleService, reminders *service.ReminderScheduler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		scheduleSvc:   scheduleSvc,
		reminders:     reminders,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}, nil
}

// Notify implements service.Notifier: reminder delivery is a plain message
// to the chat that owns the entry.
func (b *Bot) Notify(chatID int64, title, body string) error {
	text := fmt.Sprintf("🔔 <b>%s</b>\n%s", escape(title), escape(body))
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён. Расписание не изменилось.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /new, чтобы добавить пару, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "new":
		return b.startEntryConversation(ctx, msg)
	case "today":
		return b.handleView(ctx, msg, service.ModeDaily)
	case "week":
		return b.handleView(ctx, msg, service.ModeWeekly)
	case "clear":
		return b.askClearConfirmation(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	// A restart loses armed timers; the first contact after startup is as
	// good a moment as any to make sure this user's reminders exist.
	if err := b.reminders.RescheduleAll(ctx); err != nil {
		log.Printf("reschedule on start user=%d: %v", user.ID, err)
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я храню расписание пар и напоминаю перед началом.</b>\n\nКоманды:\n"+
			"• /new — добавить пару\n"+
			"• /today — расписание на сегодня\n"+
			"• /week — расписание на неделю\n"+
			"• /clear — удалить всё расписание\n"+
			"• /help — подсказки\n"+
			"• /cancel — отменить текущий ввод",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"• /new — добавить пару пошагово\n" +
		"• /today — пары на сегодня, по времени начала\n" +
		"• /week — вся неделя, по дням и времени\n" +
		"• Кнопки под списком — изменить или удалить пару\n" +
		"• /clear — удалить всё расписание (с подтверждением)\n" +
		"• /cancel — отменить текущий ввод\n\n" +
		"Напоминания приходят за выбранное число минут до начала пары, " +
		"пока бот запущен."
	return b.sendText(msg.Chat.ID, text)
}

// ===== Entry form conversation =====

func (b *Bot) startEntryConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	log.Printf("[info] start entry conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageCourse, input: service.EntryInput{RemindMinutes: defaultRemindMinutes}})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Добавляем пару.\n<b>Шаг 1:</b> как называется предмет?", cancelKeyboard())
}

func (b *Bot) startEditConversation(ctx context.Context, chatID int64, from *tgbotapi.User, entryID string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	entry, err := b.scheduleSvc.GetEntry(ctx, user, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Пара не найдена или уже удалена.")
		}
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	log.Printf("[info] start edit conversation user=%d entry=%s", user.ID, entryID)
	b.setConversation(from.ID, &conversationState{
		stage:   stageCourse,
		editing: true,
		input: service.EntryInput{
			ID:            entry.ID,
			Course:        entry.Course,
			Lecturer:      entry.Lecturer,
			Room:          entry.Room,
			Day:           entry.Day,
			StartTime:     entry.StartTime,
			EndTime:       entry.EndTime,
			RemindMinutes: entry.RemindMinutes,
			Semester:      entry.Semester,
		},
	})
	prompt := fmt.Sprintf("✏️ Изменяем пару «%s».\n<b>Шаг 1:</b> название предмета (сейчас: %s). «Пропустить» оставит как есть.",
		escape(entry.Course), escape(entry.Course))
	return b.sendWithReplyMarkup(chatID, prompt, skipKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageCourse:
		if !isSkipInput(text) {
			state.input.Course = text
		} else if !state.editing {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название предмета нельзя пропустить.", cancelKeyboard())
		}
		state.stage = stageLecturer
		return b.sendWithReplyMarkup(msg.Chat.ID, b.prompt(state, "👤 Кто ведёт?", state.input.Lecturer), skipKeyboard())
	case stageLecturer:
		if !isSkipInput(text) {
			state.input.Lecturer = text
		}
		state.stage = stageRoom
		return b.sendWithReplyMarkup(msg.Chat.ID, b.prompt(state, "🚪 В какой аудитории?", state.input.Room), roomKeyboard(state))
	case stageRoom:
		if !isSkipInput(text) {
			state.input.Room = text
		} else if !state.editing {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Аудиторию нельзя пропустить.", cancelKeyboard())
		}
		state.stage = stageDay
		return b.sendWithReplyMarkup(msg.Chat.ID, b.prompt(state, "📆 В какой день недели?", model.DayName(state.input.Day)), dayKeyboard(state))
	case stageDay:
		if !isSkipInput(text) || !state.editing {
			day, ok := parseDayInput(text)
			if !ok {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери день кнопкой или напиши название, например «Среда».", dayKeyboard(state))
			}
			state.input.Day = day
		}
		state.stage = stageStartTime
		return b.sendWithReplyMarkup(msg.Chat.ID, b.prompt(state, "⏰ Во сколько начало? Формат <code>09:00</code>.", state.input.StartTime), timeKeyboard(state))
	case stageStartTime:
		if !isSkipInput(text) || !state.editing {
			if _, err := model.ParseClock(text); err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать время. Используй формат <code>09:00</code>.", timeKeyboard(state))
			}
			state.input.StartTime = text
		}
		state.stage = stageEndTime
		return b.sendWithReplyMarkup(msg.Chat.ID, b.prompt(state, "🏁 Во сколько конец? Формат <code>10:30</code>.", state.input.EndTime), timeKeyboard(state))
	case stageEndTime:
		if !isSkipInput(text) || !state.editing {
			end, err := model.ParseClock(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать время. Используй формат <code>10:30</code>.", timeKeyboard(state))
			}
			if start, err := model.ParseClock(state.input.StartTime); err == nil && end <= start {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Конец должен быть позже начала.", timeKeyboard(state))
			}
			state.input.EndTime = text
		}
		state.stage = stageRemind
		return b.sendWithReplyMarkup(msg.Chat.ID,
			b.prompt(state, "🔔 За сколько минут напомнить?", strconv.Itoa(state.input.RemindMinutes)), remindKeyboard())
	case stageRemind:
		if !isSkipInput(text) {
			minutes, err := strconv.Atoi(text)
			if err != nil || minutes < 0 {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Число минут должно быть неотрицательным, например 15.", remindKeyboard())
			}
			state.input.RemindMinutes = minutes
		}
		state.stage = stageSemester
		return b.sendWithReplyMarkup(msg.Chat.ID, b.prompt(state, "🎓 Какой семестр? (можно «Пропустить»)", state.input.Semester), skipKeyboard())
	case stageSemester:
		if !isSkipInput(text) {
			state.input.Semester = text
		}
		err := b.finishEntry(ctx, msg.From, state, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /new.")
	}
}

// prompt appends the current value for edit conversations, so "skip" is
// an informed choice.
func (b *Bot) prompt(state *conversationState, question, current string) string {
	if !state.editing || strings.TrimSpace(current) == "" {
		return question
	}
	return fmt.Sprintf("%s\nСейчас: <b>%s</b> — «Пропустить» оставит как есть.", question, escape(current))
}

func (b *Bot) finishEntry(ctx context.Context, from *tgbotapi.User, state *conversationState, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	entry, err := b.scheduleSvc.SaveEntry(ctx, user, state.input)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			return b.sendTextWithRemove(chatID, fmt.Sprintf("Пара не сохранена: %s. Попробуй ещё раз через /new.", escape(validationText(vErr))))
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Не удалось сохранить пару: %s", escape(err.Error())))
	}

	log.Printf("[info] entry saved id=%s user=%d editing=%t", entry.ID, user.ID, state.editing)

	if err := b.reminders.RescheduleAll(ctx); err != nil {
		log.Printf("reschedule after save: %v", err)
	}

	var summary strings.Builder
	if state.editing {
		summary.WriteString("✅ <b>Пара обновлена</b>\n")
	} else {
		summary.WriteString("✅ <b>Пара добавлена</b>\n")
	}
	summary.WriteString(fmt.Sprintf("• <b>Предмет:</b> %s\n", escape(entry.Course)))
	if entry.Lecturer != "" {
		summary.WriteString(fmt.Sprintf("• <b>Преподаватель:</b> %s\n", escape(entry.Lecturer)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Когда:</b> %s %s–%s\n", model.DayName(entry.Day), entry.StartTime, entry.EndTime))
	summary.WriteString(fmt.Sprintf("• <b>Аудитория:</b> %s\n", escape(entry.Room)))
	summary.WriteString(fmt.Sprintf("• <b>Напоминание:</b> за %d мин\n", entry.RemindMinutes))
	if entry.Semester != "" {
		summary.WriteString(fmt.Sprintf("• <b>Семестр:</b> %s\n", escape(entry.Semester)))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(summary.String()))
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendScheduleView(ctx, chatID, user, service.ModeWeekly)
}

// ===== Views =====

func (b *Bot) handleView(ctx context.Context, msg *tgbotapi.Message, mode service.ViewMode) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	log.Printf("[info] view %s for user=%d", mode, user.ID)
	return b.sendScheduleView(ctx, msg.Chat.ID, user, mode)
}

func (b *Bot) sendScheduleView(ctx context.Context, chatID int64, user *model.User, mode service.ViewMode) error {
	entries, err := b.scheduleSvc.List(ctx, user)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось получить расписание: %s", escape(err.Error())))
	}

	now := time.Now()
	view := service.Project(entries, mode, now)

	if len(view) == 0 {
		if mode == service.ModeDaily {
			return b.sendText(chatID, fmt.Sprintf("Сегодня (%s) пар нет. 🎉", model.DayName(int(now.Weekday()))))
		}
		return b.sendText(chatID, "Расписание пусто. Добавь первую пару через /new.")
	}

	var builder strings.Builder
	if mode == service.ModeDaily {
		builder.WriteString(fmt.Sprintf("📅 <b>Сегодня — %s</b>\n\n", model.DayName(int(now.Weekday()))))
	} else {
		builder.WriteString("🗓 <b>Расписание на неделю</b>\n\n")
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	lastDay := -1
	for _, entry := range view {
		if mode == service.ModeWeekly && entry.Day != lastDay {
			builder.WriteString(fmt.Sprintf("<b>%s</b>\n", model.DayName(entry.Day)))
			lastDay = entry.Day
		}
		builder.WriteString(formatEntry(entry))

		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✏️ %s", shortTitle(entry.Course, 20)), cbEditPrefix+entry.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", cbDeletePrefix+entry.ID),
		})
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func formatEntry(entry model.ScheduleEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📚 <b>%s</b>\n", escape(entry.Course)))
	sb.WriteString(fmt.Sprintf("   ⏰ %s–%s • ауд. %s\n", entry.StartTime, entry.EndTime, escape(entry.Room)))
	if entry.Lecturer != "" {
		sb.WriteString(fmt.Sprintf("   👤 %s\n", escape(entry.Lecturer)))
	}
	if entry.Semester != "" {
		sb.WriteString(fmt.Sprintf("   🎓 Семестр: %s\n", escape(entry.Semester)))
	}
	sb.WriteString(fmt.Sprintf("   🔔 за %d мин до начала\n\n", entry.RemindMinutes))
	return sb.String()
}

// SendMorningSummaries pushes today's classes to every known user.
func (b *Bot) SendMorningSummaries(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries, err := b.scheduleSvc.List(ctx, &user)
		if err != nil {
			log.Printf("morning summary for user %d: %v", user.TelegramID, err)
			continue
		}
		view := service.Project(entries, service.ModeDaily, now)
		if len(view) == 0 {
			continue
		}

		var builder strings.Builder
		builder.WriteString(fmt.Sprintf("☀️ <b>Пары на сегодня (%s)</b>\n\n", model.DayName(int(now.Weekday()))))
		for _, entry := range view {
			builder.WriteString(formatEntry(entry))
		}

		msg := tgbotapi.NewMessage(user.TelegramID, strings.TrimSpace(builder.String()))
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("send summary to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

// ===== Callbacks and confirmations =====

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbEditPrefix):
		entryID := strings.TrimPrefix(data, cbEditPrefix)
		log.Printf("[info] callback edit user=%d entry=%s", cb.From.ID, entryID)
		return b.startEditConversation(ctx, cb.Message.Chat.ID, cb.From, entryID)
	case strings.HasPrefix(data, cbDeletePrefix):
		entryID := strings.TrimPrefix(data, cbDeletePrefix)
		log.Printf("[info] callback delete user=%d entry=%s", cb.From.ID, entryID)
		return b.askDeleteConfirmation(ctx, cb.Message.Chat.ID, cb.From, entryID)
	default:
		return nil
	}
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, entryID string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	entry, err := b.scheduleSvc.GetEntry(ctx, user, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Пара не найдена или уже удалена.")
		}
		return b.sendText(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	text := fmt.Sprintf("Удалить пару «%s» (%s %s)?", escape(entry.Course), model.DayName(entry.Day), entry.StartTime)
	b.setConfirmation(from.ID, confirmationRequest{entryID: entry.ID, action: actionDelete})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) askClearConfirmation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.setConfirmation(msg.From.ID, confirmationRequest{action: actionClear})
	return b.sendWithReplyMarkup(msg.Chat.ID, "Удалить <b>всё</b> расписание? Это действие нельзя отменить.", confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionClear {
			return b.clearAndRefresh(ctx, msg.Chat.ID, msg.From)
		}
		return b.deleteEntryAndRefresh(ctx, msg.Chat.ID, msg.From, req.entryID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		var prompt string
		if req.action == actionClear {
			prompt = "Подтверди или отмени удаление всего расписания."
		} else {
			prompt = "Подтверди или отмени удаление пары."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) deleteEntryAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User, entryID string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	entry, err := b.scheduleSvc.GetEntry(ctx, user, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendTextWithRemove(chatID, "Пара не найдена или уже удалена.")
		}
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	if err := b.scheduleSvc.DeleteEntry(ctx, user, entryID); err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	log.Printf("[info] entry deleted id=%s user=%d", entryID, user.ID)
	if err := b.reminders.RescheduleAll(ctx); err != nil {
		log.Printf("reschedule after delete: %v", err)
	}

	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Пара «%s» удалена.", escape(entry.Course))); err != nil {
		return err
	}
	return b.sendScheduleView(ctx, chatID, user, service.ModeWeekly)
}

func (b *Bot) clearAndRefresh(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	if err := b.scheduleSvc.ClearEntries(ctx, user); err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	log.Printf("[info] schedule cleared user=%d", user.ID)
	if err := b.reminders.RescheduleAll(ctx); err != nil {
		log.Printf("reschedule after clear: %v", err)
	}

	return b.sendTextWithRemove(chatID, "🗑 Всё расписание удалено.")
}

// ===== Helpers =====

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNew):
		return true, b.startEntryConversation(ctx, msg)
	case strings.ToLower(menuLabelToday):
		return true, b.handleView(ctx, msg, service.ModeDaily)
	case strings.ToLower(menuLabelWeek):
		return true, b.handleView(ctx, msg, service.ModeWeekly)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Главное меню")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// ===== Keyboards =====

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNew),
			tgbotapi.NewKeyboardButton(menuLabelToday),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelWeek),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// roomKeyboard only offers skip while editing: a new entry must name a room.
func roomKeyboard(state *conversationState) tgbotapi.ReplyKeyboardMarkup {
	if state.editing {
		return skipKeyboard()
	}
	return cancelKeyboard()
}

func dayKeyboard(state *conversationState) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(model.DayName(1)),
			tgbotapi.NewKeyboardButton(model.DayName(2)),
			tgbotapi.NewKeyboardButton(model.DayName(3)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(model.DayName(4)),
			tgbotapi.NewKeyboardButton(model.DayName(5)),
			tgbotapi.NewKeyboardButton(model.DayName(6)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(model.DayName(0)),
		),
	}
	if state.editing {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func timeKeyboard(state *conversationState) tgbotapi.ReplyKeyboardMarkup {
	if state.editing {
		return skipKeyboard()
	}
	return cancelKeyboard()
}

func remindKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("5"),
			tgbotapi.NewKeyboardButton("10"),
			tgbotapi.NewKeyboardButton("15"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("30"),
			tgbotapi.NewKeyboardButton("60"),
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// ===== Input parsing =====

func parseDayInput(text string) (int, bool) {
	value := strings.TrimSpace(strings.ToLower(text))
	if value == "" {
		return 0, false
	}
	for day := 0; day < 7; day++ {
		if value == strings.ToLower(model.DayName(day)) {
			return day, true
		}
	}
	if day, err := strconv.Atoi(value); err == nil && day >= 0 && day <= 6 {
		return day, true
	}
	return 0, false
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "пропустить" || value == "skip"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "подтвердить" || value == "да"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "отмена"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "отменить ввод" || value == "отмена"
}

func validationText(err *service.ValidationError) string {
	switch err.Reason {
	case "end before start":
		return "конец пары должен быть позже начала"
	case "course is required":
		return "нужно указать предмет"
	case "room is required":
		return "нужно указать аудиторию"
	default:
		return err.Reason
	}
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
