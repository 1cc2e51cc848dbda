package domain

// ExpenseCategories is the category keyboard offered for manual expenses.
var ExpenseCategories = []string{
	"Закупка Электромонтажных Материалов",
	"Закупка Светильников",
	"Проживание",
	"Автомобили обслуживание",
	"Спецодежда",
	"Обучение",
	"НДС",
	"НП",
	"Проезд (транспортные расходы)",
	"Лизинг",
	"Прочие расходы",
}

// AICategories is the coarser list the model picks from for free-text expenses.
var AICategories = []string{
	"Расходы с НДС",
	"Расходы без НДС",
	"ФОТ МОНТАЖНИКИ",
	"ФОТ ИТР",
	"ФОТ РП",
}

const (
	// DefaultAICategory is used when the model leaves the category empty.
	DefaultAICategory = "Прочее"
	// DefaultAIIncomeInfo is used when the model gives no income description.
	DefaultAIIncomeInfo = "AI доход"
)
