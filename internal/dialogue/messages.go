package dialogue

// User-facing texts. The bot talks Russian only.
const (
	msgPasswordPrompt   = "🔐 Введите пароль для доступа:"
	msgWrongPassword    = "❌ Неверный пароль. Попробуйте снова:"
	msgPasswordAccepted = "✅ Пароль принят. Добро пожаловать! Выберите проект или создайте новый:"
	msgWelcome          = "👋 Добро пожаловать! Выберите проект или создайте новый:"
	msgChooseProject    = "Выберите проект:"
	msgProjectsFailed   = "❌ Не удалось загрузить список проектов."
	msgNeedStart        = "Введите /start для начала."

	msgProjectNamePrompt  = "📝 Введите название нового проекта (это будет имя нового листа в таблице):"
	msgEmptyProjectName   = "⚠️ Название проекта не может быть пустым."
	msgProjectCreated     = "✅ Проект \"%s\" успешно создан и выбран."
	msgProjectCreateFail  = "❌ Не удалось создать проект. Попробуйте другое имя."
	msgTemplateMissing    = "❌ Шаблон проекта не найден в таблице. Обратитесь к администратору."
	msgProjectSelected    = "📂 Выбран проект: %s"
	msgChooseProjectFirst = "Пожалуйста, выберите проект сначала."

	msgMenu = "Что вы хотите внести?"

	msgExpenseCategoryPrompt = "Выберите категорию расхода:"
	msgIncomeInfoPrompt      = "Введите сведения о доходе: ваш комментарий"
	msgAmountPrompt          = "Введите сумму с НДС или без НДС (например: \"5000\" или \"5000 с НДС\")"
	msgInvalidAmount         = "Введите корректную сумму."
	msgCommentPrompt         = "Введите комментарий (или \"-\" для пропуска):"
	msgEmptyValue            = "⚠️ Значение не может быть пустым. Попробуйте снова:"

	msgAIPrompt = "💰 Отправьте сообщение с доходом/расходом:\n(пример: \n" +
		"💵 1. Доход: сведения о доходе - ..., сумма 50000 (без учета НДС), дата: 01.05.2025\n\n" +
		"🧾 2. Расход: стоимость 10000 (с учетом НДС или без учета НДС), категория - ФОТ РП, комментарий)"
	msgAINoAmount     = "⚠️ AI не смог распознать сумму."
	msgAIBadAmount    = "⚠️ AI распознал нулевую или отрицательную сумму. Уточните текст или введите вручную."
	msgAIUnclassified = "⚠️ AI не смог определить тип: Доход или Расход."
	msgAITimeout      = "⚠️ GPT не ответил вовремя."
	msgAIFailed       = "❌ Не удалось обработать AI-ввод."
	msgAIRateLimited  = "⚠️ AI-сервис перегружен. Попробуйте через минуту или введите данные вручную."

	msgRequestFIOPrompt      = "✏️ Введите ФИО:"
	msgRequestRolePrompt     = "💼 Введите роль (например: инженер, ИТР, монтажник):"
	msgRequestQuantityPrompt = "💡 Введите количество светильников:"
	msgInvalidQuantity       = "Введите корректное количество (целое число)."
	msgRequestAmountPrompt   = "💰 Введите сумму выплаты (ЗП без НДФЛ):"
	msgRequestPeriodPrompt   = "📆 За какой период? (например: май 2025):"
	msgRequestAIPrompt       = "🧠 Введите все данные одним сообщением:\n\nПример:\n" +
		"Иванов Иван Иванович, инженер, 12 светильников, 12000 руб, май 2025"
	msgRequestAIMalformed = "⚠️ AI вернул некорректный формат. Попробуйте снова или введите вручную."

	msgConfirmHeader  = "✅ Запись обработана. Проверьте на корректность:"
	msgSaved          = "✅ Запись сохранена в таблицу."
	msgRequestSaved   = "✅ Данные успешно записаны в Google Таблицу!"
	msgSaveFailed     = "❌ Ошибка при записи."
	msgIncomplete     = "⚠️ Запись заполнена не полностью. Начните ввод заново."
	msgDeleted        = "🗑 Запись удалена (отменена)."
	msgNothingToSave  = "Нет записи для сохранения."
	msgUnknownBranch  = "❌ Не удалось определить, что добавить. Начните заново."
	msgDone           = "Спасибо за работу! Чтобы начать снова, введите /start"
	msgNoRecords      = "Нет записей."
	msgPreviewFailed  = "❌ Не удалось получить записи."
	msgDownloadFailed = "❌ Не удалось скачать таблицу. Убедитесь, что SHEET_ID корректный и таблица доступна."
)

// Reply keyboard texts sent back as plain messages.
const (
	btnCreateProject = "➕ Создать новый проект"
	btnRestart       = "🚀 Начать заново"
	projectPrefix    = "📂 "
)
