package accounts

import "github.com/kengo-k/taxdesk-sub002/internal/core"

// DefaultChart returns the chart seeded by the initial migrations.
func DefaultChart() *Chart {
	c, err := NewChart(DefaultBuckets(), DefaultCategories(), DefaultAccounts())
	if err != nil {
		panic(err)
	}
	return c
}

func DefaultBuckets() []core.BucketInfo {
	return []core.BucketInfo{
		{Code: core.BucketAsset, Name: "資産", Side: core.SideLeft},
		{Code: core.BucketLiability, Name: "負債", Side: core.SideRight},
		{Code: core.BucketEquity, Name: "純資産", Side: core.SideRight},
		{Code: core.BucketRevenue, Name: "収益", Side: core.SideRight},
		{Code: core.BucketExpense, Name: "費用", Side: core.SideLeft},
		{Code: core.BucketTax, Name: "税金", Side: core.SideLeft},
		{Code: core.BucketClosing, Name: "決算", Side: core.SideRight},
	}
}

func DefaultCategories() []core.Category {
	return []core.Category{
		{Code: "101", Name: "現金", Bucket: core.BucketAsset, IsCash: true},
		{Code: "102", Name: "普通預金", Bucket: core.BucketAsset, IsCash: true},
		{Code: "103", Name: "定期預金", Bucket: core.BucketAsset, IsCash: true},
		{Code: "111", Name: "売掛金", Bucket: core.BucketAsset},
		{Code: "121", Name: "事業主貸", Bucket: core.BucketAsset},
		{Code: "201", Name: "未払金", Bucket: core.BucketLiability},
		{Code: "202", Name: "預り金", Bucket: core.BucketLiability},
		{Code: "211", Name: "借入金", Bucket: core.BucketLiability},
		{Code: "301", Name: "元入金", Bucket: core.BucketEquity},
		{Code: "311", Name: "事業主借", Bucket: core.BucketEquity},
		{Code: "401", Name: "売上高", Bucket: core.BucketRevenue},
		{Code: "402", Name: "雑収入", Bucket: core.BucketRevenue},
		{Code: "501", Name: "給料賃金", Bucket: core.BucketExpense},
		{Code: "502", Name: "地代家賃", Bucket: core.BucketExpense},
		{Code: "503", Name: "通信費", Bucket: core.BucketExpense},
		{Code: "504", Name: "旅費交通費", Bucket: core.BucketExpense},
		{Code: "505", Name: "消耗品費", Bucket: core.BucketExpense},
		{Code: "506", Name: "支払手数料", Bucket: core.BucketExpense},
		{Code: "601", Name: "所得税", Bucket: core.BucketTax},
		{Code: "602", Name: "住民税", Bucket: core.BucketTax},
		{Code: "701", Name: "損益", Bucket: core.BucketClosing},
	}
}

func DefaultAccounts() []core.Account {
	return []core.Account{
		{ID: 1, Code: "10101", Name: "現金", CategoryCode: "101"},
		{ID: 2, Code: "10201", Name: "三井住友銀行", CategoryCode: "102"},
		{ID: 3, Code: "10202", Name: "ゆうちょ銀行", CategoryCode: "102"},
		{ID: 4, Code: "10301", Name: "定期預金", CategoryCode: "103"},
		{ID: 5, Code: "11101", Name: "売掛金", CategoryCode: "111"},
		{ID: 6, Code: "12101", Name: "事業主貸", CategoryCode: "121"},
		{ID: 7, Code: "20101", Name: "未払金", CategoryCode: "201"},
		{ID: 8, Code: "20201", Name: "源泉所得税預り金", CategoryCode: "202"},
		{ID: 9, Code: "20202", Name: "住民税預り金", CategoryCode: "202"},
		{ID: 10, Code: "21101", Name: "借入金", CategoryCode: "211"},
		{ID: 11, Code: "30101", Name: "元入金", CategoryCode: "301"},
		{ID: 12, Code: "31101", Name: "事業主借", CategoryCode: "311"},
		{ID: 13, Code: "40101", Name: "売上高", CategoryCode: "401"},
		{ID: 14, Code: "40201", Name: "雑収入", CategoryCode: "402"},
		{ID: 15, Code: "50101", Name: "給料", CategoryCode: "501"},
		{ID: 16, Code: "50102", Name: "賞与", CategoryCode: "501"},
		{ID: 17, Code: "50201", Name: "地代家賃", CategoryCode: "502"},
		{ID: 18, Code: "50301", Name: "通信費", CategoryCode: "503"},
		{ID: 19, Code: "50401", Name: "旅費交通費", CategoryCode: "504"},
		{ID: 20, Code: "50501", Name: "消耗品費", CategoryCode: "505"},
		{ID: 21, Code: "50601", Name: "支払手数料", CategoryCode: "506"},
		{ID: 22, Code: "60101", Name: "所得税", CategoryCode: "601"},
		{ID: 23, Code: "60201", Name: "住民税", CategoryCode: "602"},
		{ID: 24, Code: "70101", Name: "損益", CategoryCode: "701"},
	}
}
