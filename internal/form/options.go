package form

// Categorical options accepted by the classification models. The lists match
// the categories the models were trained on.
var (
	WorkclassOptions = []string{
		"Federal-gov",
		"Local-gov",
		"Private",
		"Self-emp-inc",
		"Self-emp-not-inc",
		"State-gov",
		"Without-pay",
	}

	MaritalStatusOptions = []string{
		"Divorced",
		"Married-AF-spouse",
		"Married-civ-spouse",
		"Married-spouse-absent",
		"Never-married",
		"Separated",
		"Widowed",
	}

	OccupationOptions = []string{
		"Adm-clerical",
		"Armed-Forces",
		"Craft-repair",
		"Exec-managerial",
		"Farming-fishing",
		"Handlers-cleaners",
		"Machine-op-inspct",
		"Other-service",
		"Priv-house-serv",
		"Prof-specialty",
		"Protective-serv",
		"Sales",
		"Tech-support",
		"Transport-moving",
	}

	RelationshipOptions = []string{
		"Husband",
		"Not-in-family",
		"Other-relative",
		"Own-child",
		"Unmarried",
		"Wife",
	}

	SexOptions = []string{"Female", "Male"}
)

// Field names shared by the built-in schemas.
const (
	FieldAge           = "age"
	FieldCapitalGain   = "capital_gain"
	FieldCapitalLoss   = "capital_loss"
	FieldHoursPerWeek  = "hours_per_week"
	FieldEducationNum  = "education_num"
	FieldWorkclass     = "workclass"
	FieldMaritalStatus = "marital_status"
	FieldOccupation    = "occupation"
	FieldRelationship  = "relationship"
	FieldSex           = "sex"
)

// FullSchema is the ten-field income form.
func FullSchema() *Schema {
	return MustDefineSchema(
		Numeric(FieldAge, 0),
		Numeric(FieldCapitalGain, 0),
		Numeric(FieldCapitalLoss, 0),
		Numeric(FieldHoursPerWeek, 0),
		Numeric(FieldEducationNum, 0),
		Enum(FieldWorkclass, WorkclassOptions...),
		Enum(FieldMaritalStatus, MaritalStatusOptions...),
		Enum(FieldOccupation, OccupationOptions...),
		Enum(FieldRelationship, RelationshipOptions...),
		Enum(FieldSex, SexOptions...),
	)
}

// ReducedSchema keeps the numeric work/education fields and three categories.
// Occupation and sex are separate inputs, each set on its own.
func ReducedSchema() *Schema {
	return MustDefineSchema(
		Numeric(FieldAge, 0),
		Numeric(FieldHoursPerWeek, 0),
		Numeric(FieldEducationNum, 0),
		Enum(FieldMaritalStatus, MaritalStatusOptions...),
		Enum(FieldOccupation, OccupationOptions...),
		Enum(FieldSex, SexOptions...),
	)
}

// MinimalSchema asks for age and a free-text occupation only.
func MinimalSchema() *Schema {
	return MustDefineSchema(
		Numeric(FieldAge, 0),
		Text(FieldOccupation),
	)
}
