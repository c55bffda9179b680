package repository

// OwnerScope は行レベルの絞り込み条件。
// OwnerIDがnilなら全件、値があればその所有者（モデレーター）の商品に関係する行だけ。
type OwnerScope struct {
	OwnerID *int64
}

func AllRows() OwnerScope {
	return OwnerScope{}
}

func OwnedBy(ownerID int64) OwnerScope {
	return OwnerScope{OwnerID: &ownerID}
}

func (s OwnerScope) IsAll() bool {
	return s.OwnerID == nil
}
