// Package weather fetches current conditions from OpenWeatherMap.
package weather

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Condition is the coarse sky state used to colour the weather embed
type Condition string

const (
	ConditionSunny    Condition = "sunny"
	ConditionRain     Condition = "rain"
	ConditionCloudy   Condition = "cloudy"
	ConditionStorm    Condition = "storm"
	ConditionOvercast Condition = "overcast"
)

var conditionColors = map[Condition]int{
	ConditionSunny:    0xFFD700,
	ConditionRain:     0x1E90FF,
	ConditionCloudy:   0xA9A9A9,
	ConditionStorm:    0x800080,
	ConditionOvercast: 0x2F4F4F,
}

// ParseCondition classifies a free-text weather description
func ParseCondition(description string) Condition {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "storm"), strings.Contains(desc, "thunder"):
		return ConditionStorm
	case strings.Contains(desc, "rain"):
		return ConditionRain
	case strings.Contains(desc, "sunny"), strings.Contains(desc, "clear"):
		return ConditionSunny
	case strings.Contains(desc, "overcast"), strings.Contains(desc, "dark"):
		return ConditionOvercast
	case strings.Contains(desc, "cloud"):
		return ConditionCloudy
	default:
		return ConditionOvercast
	}
}

// Color returns the embed colour for the condition
func (c Condition) Color() int {
	if color, ok := conditionColors[c]; ok {
		return color
	}
	return 0x0099FF
}

var compassPoints = []string{"North", "Northeast", "East", "Southeast", "South", "Southwest", "West", "Northwest"}

// Compass names the eight-point direction a wind bearing in degrees blows from
func Compass(deg float64) string {
	idx := int(math.Floor((deg+22.5)/45)) % len(compassPoints)
	if idx < 0 {
		idx += len(compassPoints)
	}
	return compassPoints[idx]
}

// AirQuality maps the OpenWeatherMap 1-5 index onto a US AQI style value and label
func AirQuality(index int) (int, string) {
	switch index {
	case 1:
		return 25, "Good"
	case 2:
		return 75, "Moderate"
	case 3:
		return 125, "Unhealthy for sensitive groups"
	case 4:
		return 175, "Unhealthy"
	case 5:
		return 250, "Very Unhealthy"
	default:
		return 0, "Unknown"
	}
}

// RemoveAccents strips Vietnamese diacritics so city names match the API's ASCII names
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.NewReplacer("Đ", "D", "đ", "d").Replace(out)
}

// Cities are offered as autocomplete choices for /weather
var Cities = []string{
	"Long Xuyên", "Vũng Tàu", "Bắc Giang", "Bắc Kạn", "Bạc Liêu", "Bắc Ninh",
	"Quy Nhơn", "Thủ Dầu Một", "Đồng Xoài", "Phan Thiết", "Cà Mau", "Cao Bằng",
	"Buôn Ma Thuột", "Gia Nghĩa", "Điện Biên Phủ", "Biên Hòa", "Cao Lãnh", "Pleiku",
	"Hà Giang", "Phủ Lý", "Hà Tĩnh", "Hải Dương", "Vị Thanh", "Hòa Bình", "Hưng Yên",
	"Nha Trang", "Rạch Giá", "Kon Tum", "Lai Châu", "Đà Lạt", "Lạng Sơn", "Lào Cai",
	"Tân An", "Nam Định", "Vinh", "Ninh Bình", "Phan Rang-Tháp Chàm", "Việt Trì",
	"Tuy Hòa", "Đồng Hới", "Tam Kỳ", "Quảng Ngãi", "Hạ Long", "Đông Hà", "Sóc Trăng",
	"Sơn La", "Tây Ninh", "Thái Bình", "Thái Nguyên", "Thanh Hóa", "Huế", "Mỹ Tho",
	"Trà Vinh", "Tuyên Quang", "Vĩnh Long", "Vĩnh Yên", "Yên Bái", "Hà Nội",
	"Thành phố Hồ Chí Minh", "Đà Nẵng", "Hải Phòng", "Cần Thơ",
}

// MatchCities returns up to limit cities containing query, ignoring case and accents
func MatchCities(query string, limit int) []string {
	needle := strings.ToLower(RemoveAccents(query))
	matches := make([]string, 0, limit)
	for _, city := range Cities {
		if len(matches) == limit {
			break
		}
		if strings.Contains(strings.ToLower(RemoveAccents(city)), needle) {
			matches = append(matches, city)
		}
	}
	return matches
}
