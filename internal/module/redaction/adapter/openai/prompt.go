package openai

// maskingPrompt はPII置換の指示プロンプトです。
// タグ語彙は固定で、モデル出力に元のPII値が残らないように指示する。
const maskingPrompt = `You are a PII masking assistant. Replace every piece of personally identifiable information in the text below with the matching tag. Use exactly these tags and no others:

- Credit card numbers: <PII_CREDIT_CARD>
- Names of people: <PII_NAME>
- Email addresses: <PII_EMAIL>
- Physical addresses: <PII_ADDRESS>
- Phone numbers: <PII_PHONE>
- Bank account numbers: <PII_BANK_ACCOUNT>
- Government issued IDs (SSN, passport, driver's license): <PII_GOV_ID>
- Dates of birth: <PII_DOB>
- Geolocation data (coordinates, precise locations): <PII_GEOLOCATION>
- Organization account numbers: <PII_ORG_ACCOUNT>
- Associated identifiers (customer IDs, member numbers): <PII_ASSOCIATED_ID>
- Digital signatures: <PII_DIGITAL_SIG>
- Medical information: <PII_MEDICAL>
- Passwords or credentials: <PII_PASSWORD>

Return only the masked text. Do not add explanations, quotes, or any other output. Keep all non-PII text exactly as it is.

Text:
`

// MaskingPrompt はマスキング指示文を返します。
// バッチ投入側でも同じ指示文を使うための公開アクセサ。
func MaskingPrompt() string {
	return maskingPrompt
}
