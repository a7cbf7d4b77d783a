package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"

	"github.com/tolikvseokey-dev/bk-reminder-bot/application"
	"github.com/tolikvseokey-dev/bk-reminder-bot/domain"
)

var (
	menuMain     = &telebot.ReplyMarkup{ResizeKeyboard: true}
	btnReminders = menuMain.Text("📌 Напоминания")
	btnInfo      = menuMain.Text("📚 Полезная информация")
	btnAbout     = menuMain.Text("ℹ️ О боте")

	menuReminders = &telebot.ReplyMarkup{ResizeKeyboard: true}
	btnAdd        = menuReminders.Text("➕ Добавить напоминание")
	btnList       = menuReminders.Text("📋 Все напоминания")
	btnBack       = menuReminders.Text("⬅️ Назад")

	// Templates for callback routing; concrete buttons are built per
	// keyboard with the same unique.
	selector      = &telebot.ReplyMarkup{}
	btnDate       = selector.Data("", "date")
	btnTime       = selector.Data("", "time")
	btnDateManual = selector.Data("✍️ Ввести дату вручную", "date_manual")
	btnTimeManual = selector.Data("✍️ Ввести время вручную", "time_manual")
	btnCancel     = selector.Data("❌ Отмена", "cancel")
)

var weekdays = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

var commonTimes = []string{"09:00", "12:00", "15:00", "18:00", "21:00"}

func init() {
	menuMain.Reply(
		menuMain.Row(btnReminders),
		menuMain.Row(btnInfo),
		menuMain.Row(btnAbout),
	)
	menuReminders.Reply(
		menuReminders.Row(btnAdd),
		menuReminders.Row(btnList),
		menuReminders.Row(btnBack),
	)
}

type ReminderHandler struct {
	bot           *telebot.Bot
	reminders     *application.ReminderService
	conversations *application.ConversationService
	clock         *domain.Clock
	datePickDays  int
	version       string
}

func NewReminderHandler(bot *telebot.Bot, reminders *application.ReminderService, conversations *application.ConversationService, clock *domain.Clock, datePickDays int, version string) *ReminderHandler {
	return &ReminderHandler{
		bot:           bot,
		reminders:     reminders,
		conversations: conversations,
		clock:         clock,
		datePickDays:  datePickDays,
		version:       version,
	}
}

func (h *ReminderHandler) Register() {
	h.bot.Handle("/start", h.onStart)
	h.bot.Handle("/version", h.onVersion)
	h.bot.Handle("/add", h.onAdd)
	h.bot.Handle("/list", h.onList)

	h.bot.Handle(&btnReminders, h.onRemindersMenu)
	h.bot.Handle(&btnAdd, h.onAdd)
	h.bot.Handle(&btnList, h.onList)
	h.bot.Handle(&btnBack, h.onBack)

	h.bot.Handle(&btnDate, h.onPickDate)
	h.bot.Handle(&btnTime, h.onPickTime)
	h.bot.Handle(&btnDateManual, h.onManualDate)
	h.bot.Handle(&btnTimeManual, h.onManualTime)
	h.bot.Handle(&btnCancel, h.onCancel)

	h.bot.Handle(telebot.OnText, h.onText)
}

func addressOf(c telebot.Context) domain.ChatAddress {
	addr := domain.ChatAddress{ChatID: c.Chat().ID}
	if m := c.Message(); m != nil {
		addr.ThreadID = m.ThreadID
	}
	return addr
}

func (h *ReminderHandler) onStart(c telebot.Context) error {
	return c.Send(
		fmt.Sprintf("Привет! Выбери раздел 👇\n<i>Версия: %s</i>", h.version),
		menuMain,
	)
}

func (h *ReminderHandler) onVersion(c telebot.Context) error {
	return c.Send(fmt.Sprintf("Версия бота: <b>%s</b>", h.version))
}

func (h *ReminderHandler) onRemindersMenu(c telebot.Context) error {
	return c.Send("📌 Напоминания:", menuReminders)
}

func (h *ReminderHandler) onBack(c telebot.Context) error {
	return c.Send("Главное меню 👇", menuMain)
}

func (h *ReminderHandler) onAdd(c telebot.Context) error {
	h.conversations.Begin(c.Sender().ID, addressOf(c))
	return c.Send("Ок! Введи <b>название</b> напоминания:", menuReminders)
}

func (h *ReminderHandler) onList(c telebot.Context) error {
	addr := addressOf(c)
	items := h.reminders.ListForChat(context.Background(), addr)

	if len(items) == 0 {
		return c.Send("Пока нет напоминаний в этом чате.", menuReminders)
	}

	retentionHours := int(h.reminders.Retention().Hours())
	lines := []string{"📋 <b>Напоминания в этом чате</b>:"}
	for i, r := range items {
		when := r.EventDT
		if t, err := h.clock.Parse(r.EventDT); err == nil {
			when = h.clock.FormatHuman(t)
		}
		lines = append(lines, fmt.Sprintf("%d. <b>%s</b> — %s", i+1, r.Title, when))
	}
	lines = append(lines, fmt.Sprintf("\n🧹 Автоудаление: через %d ч после события.", retentionHours))
	return c.Send(strings.Join(lines, "\n"), menuReminders)
}

// onText feeds free text into the active dialogue. Text from users with no
// session in this chat is ignored here.
func (h *ReminderHandler) onText(c telebot.Context) error {
	res, ok := h.conversations.HandleText(context.Background(), c.Sender().ID, addressOf(c), c.Text())
	if !ok {
		return nil
	}
	return h.renderStep(c, res)
}

func (h *ReminderHandler) onPickDate(c telebot.Context) error {
	res, ok := h.conversations.PickDate(c.Sender().ID, addressOf(c), c.Data())
	if !ok {
		return c.Respond()
	}
	_ = c.Respond(&telebot.CallbackResponse{Text: "Дата выбрана"})
	if res.Next == domain.StepTimePick {
		return c.Edit("Дата выбрана ✅\nТеперь выбери <b>время</b>:", h.timePicker())
	}
	return nil
}

func (h *ReminderHandler) onPickTime(c telebot.Context) error {
	res, ok := h.conversations.PickTime(context.Background(), c.Sender().ID, addressOf(c), c.Data())
	if !ok {
		return c.Respond()
	}
	_ = c.Respond(&telebot.CallbackResponse{Text: "Время выбрано"})
	_ = c.Edit("Время выбрано ✅")
	return h.renderStep(c, res)
}

func (h *ReminderHandler) onManualDate(c telebot.Context) error {
	if !h.conversations.RequestManualDate(c.Sender().ID, addressOf(c)) {
		return c.Respond()
	}
	_ = c.Respond(&telebot.CallbackResponse{Text: "Ок"})
	return c.Edit("Введи дату вручную: <b>31.12.2025</b> или <b>2025-12-31</b>")
}

func (h *ReminderHandler) onManualTime(c telebot.Context) error {
	if !h.conversations.RequestManualTime(c.Sender().ID, addressOf(c)) {
		return c.Respond()
	}
	_ = c.Respond(&telebot.CallbackResponse{Text: "Ок"})
	return c.Edit("Введи время вручную в формате <b>HH:MM</b> (например, <b>18:30</b>):")
}

func (h *ReminderHandler) onCancel(c telebot.Context) error {
	h.conversations.Cancel(c.Sender().ID)
	_ = c.Respond(&telebot.CallbackResponse{Text: "Отменено"})
	_ = c.Edit("Отменено.")
	return c.Send("Ок, отменил. Возвращаю меню 👇", menuReminders)
}

// renderStep turns a dialogue step result into the matching reply.
func (h *ReminderHandler) renderStep(c telebot.Context, res application.StepResult) error {
	if res.Err != nil {
		switch {
		case errors.Is(res.Err, application.ErrEmptyTitle):
			return c.Send("Название не может быть пустым. Введи ещё раз:", menuReminders)
		case errors.Is(res.Err, application.ErrBadDate):
			return c.Send("Не понял дату. Пример: <b>31.12.2025</b> или <b>2025-12-31</b>")
		case errors.Is(res.Err, application.ErrBadTime):
			return c.Send("Не понял время. Пример: <b>18:30</b> (формат HH:MM)")
		case errors.Is(res.Err, application.ErrPastTime):
			_ = c.Send("Это время уже в прошлом. Давай выберем дату/время заново.")
			return c.Send("Выбери <b>дату</b>:", h.datePicker())
		default:
			return c.Send("Что-то пошло не так, попробуй ещё раз.")
		}
	}

	if res.Created != nil {
		rem := res.Created
		when := rem.EventDT
		if t, err := h.clock.Parse(rem.EventDT); err == nil {
			when = h.clock.FormatHuman(t)
		}
		retentionHours := int(h.reminders.Retention().Hours())
		return c.Send(fmt.Sprintf(
			"✅ Напоминание добавлено!\n<b>%s</b>\n📅 %s\n"+
				"Я напомню <b>за 24 часа</b> и <b>за 1 час</b> до события.\n"+
				"🧹 Автоудаление: через <b>%d ч</b> после события.",
			rem.Title, when, retentionHours,
		), menuReminders)
	}

	switch res.Next {
	case domain.StepDatePick:
		return c.Send("Выбери <b>дату</b>:", h.datePicker())
	case domain.StepTimePick:
		return c.Send("Теперь выбери <b>время</b>:", h.timePicker())
	}
	return nil
}

// datePicker offers the next datePickDays calendar days, two per row.
func (h *ReminderHandler) datePicker() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	today := h.clock.Now()

	var rows []telebot.Row
	var row []telebot.Btn
	for i := 0; i < h.datePickDays; i++ {
		d := today.AddDate(0, 0, i)
		label := fmt.Sprintf("%s (%s)", d.Format("02.01"), weekdays[d.Weekday()])
		row = append(row, markup.Data(label, btnDate.Unique, d.Format("2006-01-02")))
		if len(row) == 2 {
			rows = append(rows, markup.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}
	rows = append(rows,
		markup.Row(markup.Data(btnDateManual.Text, btnDateManual.Unique)),
		markup.Row(markup.Data(btnCancel.Text, btnCancel.Unique)),
	)
	markup.Inline(rows...)
	return markup
}

func (h *ReminderHandler) timePicker() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}

	var rows []telebot.Row
	var row []telebot.Btn
	for _, t := range commonTimes {
		row = append(row, markup.Data(t, btnTime.Unique, t))
		if len(row) == 2 {
			rows = append(rows, markup.Row(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, markup.Row(row...))
	}
	rows = append(rows,
		markup.Row(markup.Data(btnTimeManual.Text, btnTimeManual.Unique)),
		markup.Row(markup.Data(btnCancel.Text, btnCancel.Unique)),
	)
	markup.Inline(rows...)
	return markup
}
