package i18n

// DefaultMessages returns built-in translations for all supported locales.
// These can be overridden by loading JSON files from a directory.
func DefaultMessages() map[Locale]map[string]string {
	return map[Locale]map[string]string{
		LocaleEn: enMessages,
		LocaleKo: koMessages,
	}
}

var enMessages = map[string]string{
	"validation.missing_information":  "Missing Information",
	"validation.invalid_price":        "Invalid Price",
	"validation.title_required":       "Please enter a title for your item",
	"validation.description_required": "Please provide a description for your item",
	"validation.price_required":       "Please enter a valid price for your item",
	"validation.image_required":       "Please upload at least one image",
	"validation.method_invalid":       "Please choose sell, swap or donate",

	"listing.created": "Your item has been listed on the marketplace",
	"listing.liked":   "Added to your wishlist",
	"listing.unliked": "Removed from your wishlist",

	"chat.greeting":   "Hello! I'm interested in your \"%s\". Is it still available?",
	"chat.auto_reply": "Yes, it's still available! When would you like to meet?",
	"chat.empty":      "No messages yet",

	"error.rate_limited": "Too many requests. Please try again shortly.",
}

var koMessages = map[string]string{
	"validation.missing_information":  "정보 누락",
	"validation.invalid_price":        "가격 오류",
	"validation.title_required":       "상품 제목을 입력해주세요",
	"validation.description_required": "상품 설명을 입력해주세요",
	"validation.price_required":       "올바른 가격을 입력해주세요",
	"validation.image_required":       "이미지를 한 장 이상 업로드해주세요",
	"validation.method_invalid":       "판매, 교환, 나눔 중 하나를 선택해주세요",

	"listing.created": "상품이 마켓에 등록되었습니다",
	"listing.liked":   "찜 목록에 추가되었습니다",
	"listing.unliked": "찜 목록에서 제거되었습니다",

	"chat.empty": "아직 메시지가 없습니다",

	"error.rate_limited": "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
}
