package assessment

// CatalogVersion identifies the questionnaire revision. Bump it whenever a
// question, option value or rule changes so clients can detect drift.
const CatalogVersion = "2024.1"

func doshaQuestion(id int, prompt, vata, pitta, kapha string) Question {
	return Question{
		ID:     id,
		Prompt: prompt,
		Mode:   SingleSelect,
		Options: []Option{
			{Value: string(Vata), Label: vata, Category: Vata},
			{Value: string(Pitta), Label: pitta, Category: Pitta},
			{Value: string(Kapha), Label: kapha, Category: Kapha},
		},
	}
}

// PrakritiCatalog is the 10-question constitution questionnaire.
var PrakritiCatalog = Catalog{
	Name:    "prakriti",
	Version: CatalogVersion,
	Questions: []Question{
		doshaQuestion(1, "Body Frame", "Thin, lean build", "Medium, athletic build", "Heavy, broad build"),
		doshaQuestion(2, "Skin Type", "Dry, rough, cool", "Soft, oily, warm", "Thick, moist, cool"),
		doshaQuestion(3, "Body Weight Tendency", "Hard to gain weight", "Stable weight", "Hard to lose weight"),
		doshaQuestion(4, "Hunger Pattern", "Irregular, variable", "Sharp, urgent hunger", "Can skip meals easily"),
		doshaQuestion(5, "Weather Tolerance", "Dislike cold weather", "Dislike hot weather", "Dislike damp, cool weather"),
		doshaQuestion(6, "Reaction to Stress", "Become anxious, worried", "Become angry, irritated", "Remain calm, withdrawn"),
		doshaQuestion(7, "Pace of Activity", "Fast, erratic", "Focused, determined", "Slow, steady"),
		doshaQuestion(8, "Sleep Pattern", "Light, interrupted sleep", "Moderate, sound sleep", "Deep, heavy sleep"),
		doshaQuestion(9, "Bowel Movements", "Dry, hard, irregular", "Soft, loose, regular", "Heavy, regular, sluggish"),
		doshaQuestion(10, "Hair Type", "Dry, thin, brittle", "Fine, thinning, oily", "Thick, oily, lustrous"),
	},
}

func opt(value, label string) Option { return Option{Value: value, Label: label} }

// HealthCatalog is the 15-question health-history questionnaire.
var HealthCatalog = Catalog{
	Name:    "health-history",
	Version: CatalogVersion,
	Questions: []Question{
		{ID: 1, Prompt: "Do you have a history of diabetes or blood sugar issues?", Mode: SingleSelect, Options: []Option{
			opt(NoIssue, "No history"),
			opt("prediabetic", "Pre-diabetic/borderline"),
			opt("type2", "Type 2 diabetes"),
			opt("family", "Family history only"),
		}},
		{ID: 2, Prompt: "Do you have high blood pressure or heart-related issues?", Mode: SingleSelect, Options: []Option{
			opt(NoIssue, "No issues"),
			opt("borderline", "Borderline high BP"),
			opt("hypertension", "Diagnosed hypertension"),
			opt("heart", "Heart disease"),
		}},
		{ID: 3, Prompt: "Do you experience digestive problems?", Mode: MultiSelect, Options: []Option{
			opt("acidity", "Acidity/heartburn"),
			opt("bloating", "Bloating/gas"),
			opt("constipation", "Constipation"),
			opt("diarrhea", "Frequent loose stools"),
			opt(NoIssue, "No digestive issues"),
		}},
		{ID: 4, Prompt: "Do you have any respiratory conditions?", Mode: MultiSelect, Options: []Option{
			opt("asthma", "Asthma"),
			opt("allergies", "Seasonal allergies"),
			opt("sinusitis", "Chronic sinusitis"),
			opt(NoIssue, "No respiratory issues"),
		}},
		{ID: 5, Prompt: "Do you experience joint or muscle problems?", Mode: MultiSelect, Options: []Option{
			opt("arthritis", "Arthritis/joint pain"),
			opt("backpain", "Chronic back pain"),
			opt("muscle", "Muscle stiffness"),
			opt(NoIssue, "No joint/muscle issues"),
		}},
		{ID: 6, Prompt: "How would you describe your energy levels?", Mode: SingleSelect, Options: []Option{
			opt("high", "Generally high energy"),
			opt("moderate", "Moderate, stable energy"),
			opt("low", "Often tired/low energy"),
			opt("variable", "Energy varies greatly"),
		}},
		{ID: 7, Prompt: "Do you have any skin conditions?", Mode: MultiSelect, Options: []Option{
			opt("eczema", "Eczema/dermatitis"),
			opt("psoriasis", "Psoriasis"),
			opt("acne", "Frequent acne"),
			opt("dryness", "Chronic dry skin"),
			opt(NoIssue, "No skin issues"),
		}},
		{ID: 8, Prompt: "How is your sleep quality?", Mode: SingleSelect, Options: []Option{
			opt("excellent", "Deep, restful sleep"),
			opt("good", "Generally good sleep"),
			opt("light", "Light, easily disturbed"),
			opt("insomnia", "Difficulty falling/staying asleep"),
		}},
		{ID: 9, Prompt: "Do you experience stress or anxiety?", Mode: SingleSelect, Options: []Option{
			opt("minimal", "Rarely stressed"),
			opt("moderate", "Moderate stress levels"),
			opt("high", "High stress/anxiety"),
			opt("chronic", "Chronic anxiety/depression"),
		}},
		{ID: 10, Prompt: "Do you have any hormonal imbalances?", Mode: MultiSelect, Options: []Option{
			opt("thyroid", "Thyroid issues"),
			opt("pcos", "PCOS/hormonal irregularities"),
			opt("menopause", "Menopause symptoms"),
			opt(NoIssue, "No hormonal issues"),
		}},
		{ID: 11, Prompt: "Do you have food allergies or intolerances?", Mode: MultiSelect, Options: []Option{
			opt("gluten", "Gluten intolerance"),
			opt("lactose", "Lactose intolerance"),
			opt("nuts", "Nut allergies"),
			opt("spices", "Spice sensitivities"),
			opt(NoIssue, "No food allergies"),
		}},
		{ID: 12, Prompt: "How often do you get sick?", Mode: SingleSelect, Options: []Option{
			opt("rarely", "Rarely get sick"),
			opt("seasonal", "Seasonal colds/flu"),
			opt("frequent", "Frequently fall ill"),
			opt("chronic", "Chronic health issues"),
		}},
		{ID: 13, Prompt: "Do you have any weight-related concerns?", Mode: SingleSelect, Options: []Option{
			opt("stable", "Weight is stable"),
			opt("gain", "Difficulty losing weight"),
			opt("loss", "Difficulty gaining weight"),
			opt("fluctuates", "Weight fluctuates frequently"),
		}},
		{ID: 14, Prompt: "Do you take any regular medications?", Mode: MultiSelect, Options: []Option{
			opt("bp", "Blood pressure medication"),
			opt("diabetes", "Diabetes medication"),
			opt("thyroid", "Thyroid medication"),
			opt("supplements", "Vitamins/supplements only"),
			opt(NoIssue, "No regular medications"),
		}},
		{ID: 15, Prompt: "Any other significant health concerns?", Mode: MultiSelect, Options: []Option{
			opt("kidney", "Kidney/urinary issues"),
			opt("liver", "Liver problems"),
			opt("autoimmune", "Autoimmune conditions"),
			opt("cancer", "Cancer history"),
			opt(NoIssue, "No other concerns"),
		}},
	},
}
