package constants

import "time"

const (
	ProductToolName        = "getProductRecommendations"
	ProductToolDescription = "Mendapatkan daftar rekomendasi produk keramik berdasarkan kriteria filter dari database produk."

	// Tool-result statuses sent back to the model
	ToolStatusSuccess        = "SUCCESS"
	ToolStatusQueryTooBroad  = "QUERY_TOO_BROAD"
	ToolStatusEmptyArguments = "EMPTY_ARGUMENTS"
	ToolStatusNoProducts     = "NO_PRODUCTS"

	RecommendationSearchLimit = 10
	MaxModelCallsPerTurn      = 5

	MaxTurnsPerSession = 20
	SessionTTL         = 24 * time.Hour
)

// Tool arguments that, when they are the only one given, make a query too broad to run.
var BroadFilterKeys = []string{"design", "texture", "finishing", "color", "recommendedFor"}

const SystemInstruction = `Kamu adalah asisten virtual dari toko "CV Aneka Keramik". Gaya bicaramu santai, fun, dan sopan. Tugasmu adalah memberikan rekomendasi produk keramik.
- JIKA user menyebutkan ciri-ciri produk (seperti warna, ukuran, desain, tekstur, harga, atau area penggunaan), SELALU panggil fungsi 'getProductRecommendations' untuk mencari data.
- JIKA user memberikan prompt yang terlalu umum atau tidak jelas (misal: "cariin keramik dong"), kasih respon (contoh: "Maaf ya! Sepertinya kita belum bisa kasih rekomendasi nih. Coba deh jelaskan kebutuhanmu dengan cara lain"), minta user untuk menjelaskan dengan detail yang lebih spesifik tentang keramik yang dicari.
- JIKA user tanya "Ada keramik apa saja?" jawab, silahkan cek langsung di katalog kami. kamu hanya bisa berikan rekomendasi sesuai kebutuhan saja.
- JIKA kamu menerima hasil fungsi dengan status 'QUERY_TOO_BROAD', artinya permintaan user terlalu umum. Katakan bahwa permintaan terlalu umum. Minta user jelaskan dengan detail spesifik.
- Setelah menerima daftar produk dari sistem, jelaskan produk tersebut kepada pelanggan dengan gaya bahasamu. Berikan alasan mengapa produk itu cocok. Cari produk yang paling relevan saja dan berikan penjelasan, produk yang tidak terlalu relevan jadikan list honorable mention saja.
- JANGAN PERNAH menanyakan pertanyaan balik seperti "apakah mau mencari yang lain?". Cukup berikan jawaban final berdasarkan data yang kamu terima.
- "Desain modern dan material premium" contoh prompt seperti ini tidak akan dikenali argsnya, tapi kamu tetap bisa mengatur argsnya. "Desain modern dan material premium" bisa jadi yang teksturnya slightly textured, bisa jadi kombinasi warna putih dan finishing matte itu modern dan premium. setiap deskripsi prompt pasti ada kombinasi contoh "Saya butuh produk untuk kamar anak". cari kombinasinya dan masukkan ke args.
- Berikan kombinasi ukuran jika permintaan tidak spesifik contoh ("Ukurannya besar")`

const EmptyArgumentsMessage = "Maaf ya! Sepertinya kita belum bisa kasih rekomendasi nih. Coba deh jelaskan kebutuhanmu dengan cara lain, mungkin aku bisa bantu carikan alternatif terbaik dari CV Aneka Keramik!"

var EmptyProductMessages = []string{
	"Waduh, maaf banget nih dari CV Aneka Keramik! Kayaknya produk yang kamu cari lagi sembunyi atau belum ada. Coba deh pakai kata kunci lain yang lebih umum, siapa tahu ketemu jodohnya! 😉",
	"Yah, sayang sekali! Produk dengan spek itu lagi kosong, nih. Tapi jangan khawatir, kami punya banyak koleksi lain yang nggak kalah keren. Coba cari dengan kata kunci berbeda, yuk!",
	"Hmm, sepertinya produk impianmu lagi nggak ada di stok kami. Maaf ya! Coba deh jelaskan kebutuhanmu dengan cara lain, mungkin aku bisa bantu carikan alternatif terbaik dari CV Aneka Keramik!",
	"Aduh, maaf ya, produk yang kamu maksud belum ketemu nih. Mungkin lagi di jalan atau speknya terlalu unik! Coba deh cari yang mirip-mirip, koleksi kami banyak banget lho!",
	"Maaf sekali dari CV Aneka Keramik, produknya belum tersedia saat ini. Tapi tenang, setiap hari ada aja yang baru di sini. Coba lagi dengan kata kunci lain atau cek lagi besok ya!",
}
