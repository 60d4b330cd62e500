package service

import (
	"fmt"
	"strings"

	channelmodels "promo-roulette-backend/internal/features/channel/models"
	prizemodels "promo-roulette-backend/internal/features/prize/models"
	usermodels "promo-roulette-backend/internal/features/user/models"
	"promo-roulette-backend/internal/platform/telegram"
)

// Токены callback-кнопок консоли. Аргумент дописывается после ":".
const (
	cbMenu          = "adm_menu"
	cbChannels      = "adm_channels"
	cbAddChannel    = "adm_add_ch"
	cbDeleteChannel = "adm_del_ch"
	cbPrizes        = "adm_prizes"
	cbEditPrize     = "adm_edit_pr"
	cbTogglePrize   = "adm_toggle_pr"
	cbStats         = "adm_stats"
	cbRefresh       = "adm_refresh"
)

const maxButtonTitleLen = 20

func startView(name, webAppURL string) (string, *telegram.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"🎖 <b>Привет, %s!</b>\n\n"+
			"🇷🇺 <b>С 23 Февраля — Днём Защитника Отечества!</b>\n\n"+
			"Сегодня мы подготовили для тебя особенный подарок! 🎁\n\n"+
			"🎰 Крути праздничную рулетку и получи свой приз <b>абсолютно бесплатно!</b>\n\n"+
			"Жми на кнопку ниже 👇",
		name,
	)

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "🎁 Открыть рулетку!", WebApp: &telegram.WebAppInfo{URL: webAppURL}},
	}}}

	return text, markup
}

func menuView(channelCount, prizeCount, userCount int, refreshed bool) (string, *telegram.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"⚙️ <b>Панель администратора</b>\n\n"+
			"📢 Каналов: <b>%d</b>\n"+
			"🎁 Призов: <b>%d</b>\n"+
			"👥 Пользователей: <b>%d</b>",
		channelCount, prizeCount, userCount,
	)
	if refreshed {
		text += "\n\n✅ Данные каналов обновлены!"
	}

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
		{{Text: fmt.Sprintf("📢 Каналы (%d)", channelCount), CallbackData: cbChannels}},
		{{Text: fmt.Sprintf("🎁 Призы (%d)", prizeCount), CallbackData: cbPrizes}},
		{{Text: "📊 Статистика", CallbackData: cbStats}},
		{{Text: "🔄 Обновить данные каналов", CallbackData: cbRefresh}},
	}}

	return text, markup
}

func channelsView(channels []*channelmodels.Channel) (string, *telegram.InlineKeyboardMarkup) {
	var text string
	if len(channels) == 0 {
		text = "📢 <b>Каналы</b>\n\nНет добавленных каналов."
	} else {
		var b strings.Builder
		b.WriteString("📢 <b>Каналы-спонсоры:</b>\n\n")
		for i, ch := range channels {
			title := ch.Title
			if title == "" {
				title = "Без названия"
			}
			marker := "📢"
			if ch.AvatarBase64 != "" {
				marker = "🖼"
			}
			handle := ""
			if ch.Username != "" {
				handle = " @" + ch.Username
			}
			fmt.Fprintf(&b, "%d. %s <b>%s</b>%s\n", i+1, marker, title, handle)
			fmt.Fprintf(&b, "   👥 %d подписчиков\n\n", ch.MemberCount)
		}
		text = b.String()
	}

	var rows [][]telegram.InlineKeyboardButton
	for _, ch := range channels {
		title := ch.Title
		if title == "" {
			title = fmt.Sprintf("%d", ch.ChannelID)
		}
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         "❌ " + truncate(title, maxButtonTitleLen),
			CallbackData: fmt.Sprintf("%s:%d", cbDeleteChannel, ch.ChannelID),
		}})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{{Text: "➕ Добавить канал", CallbackData: cbAddChannel}})
	rows = append(rows, []telegram.InlineKeyboardButton{{Text: "← Назад", CallbackData: cbMenu}})

	return text, &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func addChannelPromptView() (string, *telegram.InlineKeyboardMarkup) {
	text := "📢 <b>Добавление канала</b>\n\n" +
		"Отправьте мне одно из:\n" +
		"• @username канала\n" +
		"• Ссылку https://t.me/channel\n" +
		"• ID канала (число)\n\n" +
		"⚠️ Бот должен быть администратором канала!"

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "← Отмена", CallbackData: cbChannels},
	}}}

	return text, markup
}

func prizesView(prizes []*prizemodels.Prize) (string, *telegram.InlineKeyboardMarkup) {
	var b strings.Builder
	b.WriteString("🎁 <b>Призы:</b>\n\n")
	for _, p := range prizes {
		status := "❌"
		if p.IsActive {
			status = "✅"
		}
		fmt.Fprintf(&b, "%s %s <b>%s</b>\n", status, p.Emoji, p.Name)
		fmt.Fprintf(&b, "   Файл: <code>%s</code>\n\n", p.TgsFile)
	}

	var rows [][]telegram.InlineKeyboardButton
	for _, p := range prizes {
		toggle := "🔴"
		if p.IsActive {
			toggle = "🟢"
		}
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "✏️ " + p.Name, CallbackData: cbEditPrize + ":" + p.Key},
			{Text: toggle + " Вкл/Выкл", CallbackData: cbTogglePrize + ":" + p.Key},
		})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{{Text: "← Назад", CallbackData: cbMenu}})

	return b.String(), &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func editPrizePromptView(currentName string) (string, *telegram.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"✏️ <b>Редактирование приза</b>\n\n"+
			"Текущее название: <b>%s</b>\n\n"+
			"Отправьте новое название:",
		currentName,
	)

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "← Отмена", CallbackData: cbPrizes},
	}}}

	return text, markup
}

func statsView(stats *usermodels.Stats) (string, *telegram.InlineKeyboardMarkup) {
	var b strings.Builder
	fmt.Fprintf(&b,
		"📊 <b>Статистика</b>\n\n"+
			"👥 Всего: <b>%d</b>\n"+
			"🆕 Новые (не крутили): <b>%d</b>\n"+
			"🎰 Крутили (не подписались): <b>%d</b>\n"+
			"✅ Подписались (заявка): <b>%d</b>\n\n"+
			"📈 Конверсия:\n"+
			"   Крутили: <b>%d%%</b>\n"+
			"   Подписались: <b>%d%%</b>\n",
		stats.Total, stats.New, stats.Rolled, stats.Claimed,
		stats.RolledPercent, stats.ClaimedPercent,
	)

	if len(stats.Recent) > 0 {
		b.WriteString("\n👤 <b>Последние пользователи:</b>\n")
		for _, u := range stats.Recent {
			fmt.Fprintf(&b, "   • %s — %s", u.DisplayName(), u.State)
			if u.PrizeName != "" {
				fmt.Fprintf(&b, " (%s)", u.PrizeName)
			}
			b.WriteString("\n")
		}
	}

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "← Назад", CallbackData: cbMenu},
	}}}

	return b.String(), markup
}

func channelAddedText(ch *channelmodels.Channel) string {
	marker := "📢"
	if ch.AvatarBase64 != "" {
		marker = "🖼"
	}
	link := ch.InviteLink
	if link == "" {
		link = "нет ссылки"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ <b>Канал добавлен!</b>\n\n%s <b>%s</b>\n", marker, ch.Title)
	if ch.Username != "" {
		fmt.Fprintf(&b, "👤 @%s\n", ch.Username)
	}
	fmt.Fprintf(&b, "🔗 %s\n👥 %d подписчиков", link, ch.MemberCount)

	return b.String()
}

func channelListText(channels []*channelmodels.Channel) string {
	var b strings.Builder
	b.WriteString("📢 <b>Текущие каналы:</b>\n\n")
	for i, ch := range channels {
		fmt.Fprintf(&b, "%d. <b>%s</b>", i+1, ch.Title)
		if ch.Username != "" {
			fmt.Fprintf(&b, " (@%s)", ch.Username)
		}
		fmt.Fprintf(&b, "\n   👥 %d\n", ch.MemberCount)
	}
	return b.String()
}

func prizeListText(prizes []*prizemodels.Prize) string {
	var b strings.Builder
	b.WriteString("🎁 <b>Текущие призы:</b>\n\n")
	for _, p := range prizes {
		fmt.Fprintf(&b, "• %s <b>%s</b>\n", p.Emoji, p.Name)
	}
	return b.String()
}

const channelNotFoundText = "❌ <b>Не удалось найти канал.</b>\n\n" +
	"Убедитесь что:\n" +
	"• Бот добавлен в канал как администратор\n" +
	"• Канал существует\n" +
	"• Вы отправили верный @username или ссылку\n\n" +
	"Попробуйте ещё раз — отправьте @username канала:"

func notAdminText(title string) string {
	return fmt.Sprintf(
		"⚠️ <b>Бот не является администратором канала</b> «%s».\n\n"+
			"Добавьте бота в канал как администратора, затем попробуйте снова.",
		title,
	)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
