package model

import "strings"

// 配送先住所。注文に埋め込んで保存する（住所帳は持たない）
type ShippingAddress struct {
	Street     string `gorm:"type:varchar(255);not null" json:"street"`
	City       string `gorm:"type:varchar(255);not null" json:"city"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postalCode"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`
}

// 前後の空白を落とした住所を返す
func (a ShippingAddress) Normalize() ShippingAddress {
	return ShippingAddress{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}

// 4項目すべて必須
func (a ShippingAddress) Complete() bool {
	return a.Street != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}
