package domain

// Tag はPIIカテゴリごとの置換タグです
type Tag string

// 正準タグ語彙。カテゴリごとに固定の1タグを割り当てる。
const (
	TagCreditCard   Tag = "<PII_CREDIT_CARD>"
	TagName         Tag = "<PII_NAME>"
	TagEmail        Tag = "<PII_EMAIL>"
	TagAddress      Tag = "<PII_ADDRESS>"
	TagPhone        Tag = "<PII_PHONE>"
	TagBankAccount  Tag = "<PII_BANK_ACCOUNT>"
	TagGovID        Tag = "<PII_GOV_ID>"
	TagDOB          Tag = "<PII_DOB>"
	TagGeolocation  Tag = "<PII_GEOLOCATION>"
	TagOrgAccount   Tag = "<PII_ORG_ACCOUNT>"
	TagAssociatedID Tag = "<PII_ASSOCIATED_ID>"
	TagDigitalSig   Tag = "<PII_DIGITAL_SIG>"
	TagMedical      Tag = "<PII_MEDICAL>"
	TagPassword     Tag = "<PII_PASSWORD>"
)

// AllTags は全カテゴリのタグを返します
func AllTags() []Tag {
	return []Tag{
		TagCreditCard,
		TagName,
		TagEmail,
		TagAddress,
		TagPhone,
		TagBankAccount,
		TagGovID,
		TagDOB,
		TagGeolocation,
		TagOrgAccount,
		TagAssociatedID,
		TagDigitalSig,
		TagMedical,
		TagPassword,
	}
}
