package dialogue

import (
	"ledgerbot/internal/domain"
	"ledgerbot/internal/port"
)

func inline(rows ...[]port.Button) *port.Keyboard {
	return &port.Keyboard{Inline: true, Rows: rows}
}

func button(text string, action domain.Action) port.Button {
	return port.Button{Text: text, Data: string(action)}
}

func inputButton(text string, t domain.EntryType) port.Button {
	return port.Button{Text: text, Data: domain.ActionInputPrefix + string(t)}
}

// projectsReplyKeyboard lists projects as reply buttons, one per row.
func projectsReplyKeyboard(projects []string) *port.Keyboard {
	rows := make([][]port.Button, 0, len(projects)+2)
	for _, p := range projects {
		rows = append(rows, []port.Button{{Text: projectPrefix + p}})
	}
	rows = append(rows,
		[]port.Button{{Text: btnCreateProject}},
		[]port.Button{{Text: btnRestart}},
	)
	return &port.Keyboard{Rows: rows}
}

func projectsInlineKeyboard(projects []string) *port.Keyboard {
	rows := make([][]port.Button, 0, len(projects)+1)
	for _, p := range projects {
		rows = append(rows, []port.Button{{Text: projectPrefix + p, Data: domain.ActionProjectPrefix + p}})
	}
	rows = append(rows, []port.Button{button("📁 Создать новый проект", domain.ActionCreateProject)})
	return inline(rows...)
}

func menuKeyboard() *port.Keyboard {
	return inline(
		[]port.Button{inputButton("➕ Расход", domain.EntryExpense), inputButton("💰 Доход", domain.EntryIncome)},
		[]port.Button{inputButton("🤖 AI-ввод", domain.EntryAI), button("📄 Последние 5 записей", domain.ActionPreview)},
		[]port.Button{inputButton("👷 Заявка на выплату", domain.EntryRequest), inputButton("🧠 Заявка через AI", domain.EntryRequestAI)},
		[]port.Button{button("📤 Скачать таблицу", domain.ActionDownload)},
		[]port.Button{button("🔙 К проектам", domain.ActionBackToProjects)},
	)
}

func categoryKeyboard() *port.Keyboard {
	var rows [][]port.Button
	for i := 0; i < len(domain.ExpenseCategories); i += 2 {
		row := []port.Button{{Text: domain.ExpenseCategories[i]}}
		if i+1 < len(domain.ExpenseCategories) {
			row = append(row, port.Button{Text: domain.ExpenseCategories[i+1]})
		}
		rows = append(rows, row)
	}
	return &port.Keyboard{Rows: rows}
}

func confirmKeyboard() *port.Keyboard {
	return inline([]port.Button{
		button("✅ Оставить", domain.ActionKeep),
		button("🗑 Удалить", domain.ActionDelete),
	})
}

func afterSaveKeyboard(kind domain.RecordKind) *port.Keyboard {
	if kind == domain.KindRequest {
		return inline(
			[]port.Button{button("➕ Добавить ещё одну заявку", domain.ActionStartOver)},
			[]port.Button{button("🏁 Завершить", domain.ActionDone)},
		)
	}
	return inline(
		[]port.Button{button("➕ Добавить ещё", domain.ActionStartOver)},
		[]port.Button{button("📄 Последние записи", domain.ActionPreview)},
		[]port.Button{button("🔙 В меню", domain.ActionBackToMenu)},
	)
}
