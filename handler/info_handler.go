package handler

import (
	"fmt"

	"gopkg.in/telebot.v3"
)

var usefulLinks = map[string]string{
	"rm_schedule":        "https://docs.google.com/spreadsheets/d/1ZXCllmYkqmP6y9HRnYm0_2D2f63haeU-vI2gylnL6Pg/edit?usp=drive_link",
	"vacations":          "https://docs.google.com/spreadsheets/d/12SEymi_QNwSJ8agRBzXc1UZCfNhabtiLX07KxEsmpzQ/edit?usp=drive_link",
	"ato":                "https://docs.google.com/spreadsheets/d/1IiKxS9Tf6oHUJJDhfozvWdbhC9wOZPzapflYv612Du0/edit",
	"dynamics":           "https://docs.google.com/spreadsheets/d/1HhgNo3mfd8LrdfBPU2sjVatA-fboBf75387Ryd-qVUg/edit?gid=2086138160#gid=2086138160",
	"roster":             "https://docs.google.com/spreadsheets/d/1vwPI_SPnjX5wPI6tu4jAFXSWFubjBQEO56kuCMysL_4/edit?usp=drive_link",
	"contacts":           "https://docs.google.com/spreadsheets/d/1P5GbNMQD0A3OWh6GxLAYJDlgC92H95uo/edit?gid=2031453167#gid=2031453167",
	"protocol_rm":        "https://docs.google.com/spreadsheets/d/1dBZzfanIbtjgp2sFDzU441Wv6ghT-bryQ19wc034Ye4/edit",
	"protocol_directors": "https://docs.google.com/spreadsheets/d/1cEMp3_84LuXrffAgqAOQq9kG8k-Ks8ev5k3Xo3QR-qo/edit",
}

const groupsText = `Группы

Витрины
https://t.me/+9hdkceSRFdU4MmZi

Кофе-бар
https://t.me/+rAM0-VID0Gg0NmUy

Персонал
https://t.me/+ZcNnavnmJQlkZDAy

Цели
https://t.me/+SkzL_Xit6ypkMmZi

Айти вопросы
https://t.me/+oMzRrI1DzGlkNDVi

Логистика
https://t.me/+CsD1pmYTTnQ5NDdi

Технические вопросы
https://t.me/+0dm4nBMj3LVlMGYy

Качество ЛБК
https://t.me/+9WmWOSrjBxs1N2Uy

Выход на стажировку
https://t.me/+fa-ESZUYflA0ZThi

Обратная связь ЕДА
https://t.me/+3mipmXTpud5kZWVi

5 pillars
https://t.me/+f_YYEYz1rfc4NjAy

Курьеры кадры
https://t.me/+E7w0LSi4ltBlZjJi

Поиск продукции
https://t.me/+Yw-opolA0tc5ZTY6

Корп академия
https://t.me/+uhlNZjfkeZE0NGYy

Обучение БК
https://t.me/+GU5oGnyjdgc5OTMy

Важная информация
https://t.me/+QB6nQlAno9xhZTQy

Пожарная безопасность
https://t.me/+l2rMTNe2I_VkMjNi`

var (
	infoSel       = &telebot.ReplyMarkup{}
	btnUIStorage  = infoSel.Data("🧊 Сроки хранения", "ui_storage")
	btnUIGroups   = infoSel.Data("🔗 Ссылки на группы", "ui_groups")
	btnUIProtocol = infoSel.Data("📝 Протокол собрания", "ui_protocol")
	btnUIBackInfo = infoSel.Data("⬅️ Назад", "ui_back_info")
	btnUIBackMain = infoSel.Data("⬅️ Назад", "ui_back_main")
)

// InfoHandler serves the static reference section: spreadsheet links, group
// links and the about text.
type InfoHandler struct {
	bot       *telebot.Bot
	timezone  string
	retention int // hours
	version   string
}

func NewInfoHandler(bot *telebot.Bot, timezone string, retentionHours int, version string) *InfoHandler {
	return &InfoHandler{bot: bot, timezone: timezone, retention: retentionHours, version: version}
}

func (h *InfoHandler) Register() {
	h.bot.Handle(&btnInfo, h.onInfoMenu)
	h.bot.Handle(&btnAbout, h.onAbout)

	h.bot.Handle(&btnUIStorage, h.onStorage)
	h.bot.Handle(&btnUIGroups, h.onGroups)
	h.bot.Handle(&btnUIProtocol, h.onProtocol)
	h.bot.Handle(&btnUIBackInfo, h.onBackInfo)
	h.bot.Handle(&btnUIBackMain, h.onBackMain)
}

func infoMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data(btnUIStorage.Text, btnUIStorage.Unique)),
		markup.Row(markup.URL("🗓 Расписание РМ", usefulLinks["rm_schedule"])),
		markup.Row(markup.URL("🌴 График отпусков", usefulLinks["vacations"])),
		markup.Row(markup.URL("📊 АТО", usefulLinks["ato"])),
		markup.Row(markup.Data(btnUIGroups.Text, btnUIGroups.Unique)),
		markup.Row(markup.URL("📈 Динамика", usefulLinks["dynamics"])),
		markup.Row(markup.URL("🧾 Ростер", usefulLinks["roster"])),
		markup.Row(markup.URL("☎️ Контакт-лист", usefulLinks["contacts"])),
		markup.Row(markup.Data(btnUIProtocol.Text, btnUIProtocol.Unique)),
		markup.Row(markup.Data(btnUIBackMain.Text, btnUIBackMain.Unique)),
	)
	return markup
}

func protocolMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.URL("👔 РМ", usefulLinks["protocol_rm"])),
		markup.Row(markup.URL("🧑‍💼 Директора", usefulLinks["protocol_directors"])),
		markup.Row(markup.Data(btnUIBackInfo.Text, btnUIBackInfo.Unique)),
	)
	return markup
}

func (h *InfoHandler) onInfoMenu(c telebot.Context) error {
	// The reply menu stays as is; the section itself lives in the inline
	// keyboard under the message.
	_ = c.Send("📚 <b>Полезная информация</b>\nВыбери пункт 👇", menuMain)
	return c.Send("Меню:", infoMenu(), telebot.NoPreview)
}

func (h *InfoHandler) onAbout(c telebot.Context) error {
	return c.Send(fmt.Sprintf(
		"ℹ️ <b>О боте</b>\n\n"+
			"• Раздел «Напоминания» — добавление и список\n"+
			"• Раздел «Полезная информация» — документы/ссылки/материалы\n\n"+
			"🕒 Таймзона: <b>%s</b>\n"+
			"🧹 Автоудаление напоминаний: <b>%d ч</b> после события\n"+
			"🔖 Версия: <b>%s</b>",
		h.timezone, h.retention, h.version,
	), menuMain)
}

func (h *InfoHandler) onStorage(c telebot.Context) error {
	_ = c.Respond()
	return c.Send("🧊 <b>Сроки хранения</b>\n\nПока не трогаем — позже сделаем поиск по базе (JSON/таблица).", menuMain)
}

func (h *InfoHandler) onGroups(c telebot.Context) error {
	_ = c.Respond()
	return c.Send(groupsText, menuMain, telebot.NoPreview)
}

func (h *InfoHandler) onProtocol(c telebot.Context) error {
	_ = c.Respond()
	if err := c.Edit("📝 <b>Протокол собрания</b>\nВыбери раздел 👇", protocolMenu()); err != nil {
		return c.Send("📝 <b>Протокол собрания</b>\nВыбери раздел 👇", protocolMenu())
	}
	return nil
}

func (h *InfoHandler) onBackInfo(c telebot.Context) error {
	_ = c.Respond()
	if err := c.Edit("📚 <b>Полезная информация</b>\nВыбери пункт 👇", infoMenu()); err != nil {
		return c.Send("Меню:", infoMenu())
	}
	return nil
}

func (h *InfoHandler) onBackMain(c telebot.Context) error {
	_ = c.Respond()
	return c.Send("Главное меню 👇", menuMain)
}
