package businessflow

// User-facing messages. The directory works in Persian.
const (
	MsgCredentialsRequired = "نام کاربری و رمز عبور الزامی است"
	MsgInvalidInput        = "ورودی نامعتبر"
	MsgSuspiciousInput     = "ورودی شامل محتوای مشکوک است"
	MsgAccountLockedFmt    = "حساب کاربری قفل شده است. %d دقیقه صبر کنید."
	MsgLoginSuccess        = "ورود موفقیت‌آمیز"
	MsgLockTriggered       = "تعداد تلاش‌های ناموفق زیاد است. حساب برای 15 دقیقه قفل شد."
	MsgBadCredentialsFmt   = "نام کاربری یا رمز عبور اشتباه است. (%d/%d تلاش)"
	MsgLoginUnavailable    = "ورود در حال حاضر امکان‌پذیر نیست. لطفاً دوباره تلاش کنید."
	MsgLogoutSuccess       = "خروج با موفقیت انجام شد"
	MsgSessionExpired      = "نشست شما منقضی شده است. لطفاً دوباره وارد شوید."
	MsgCaptchaInvalid      = "کد امنیتی نامعتبر است"

	MsgPasswordTooShort     = "رمز عبور باید حداقل 8 کاراکتر باشد"
	MsgPasswordTooLong      = "رمز عبور نباید بیشتر از 128 کاراکتر باشد"
	MsgPasswordNeedsLower   = "رمز عبور باید شامل حروف کوچک باشد"
	MsgPasswordNeedsUpper   = "رمز عبور باید شامل حروف بزرگ باشد"
	MsgPasswordNeedsDigit   = "رمز عبور باید شامل اعداد باشد"
	MsgPasswordNeedsSpecial = "رمز عبور باید شامل کاراکترهای خاص باشد (@$!%*?&)"
	MsgPasswordWeakPattern  = "رمز عبور شامل الگوهای ضعیف است"
	MsgPasswordValid        = "رمز عبور معتبر است"
	MsgPasswordSameAsOld    = "رمز عبور جدید نمی‌تواند مشابه رمز عبور فعلی باشد"
	MsgPasswordChanged      = "رمز عبور با موفقیت تغییر کرد"
	MsgPasswordChangeFailed = "تغییر رمز عبور انجام نشد"

	MsgAttemptsCleared = "تلاش‌های ورود پاک شد"

	MsgPersonnelCodeRequired  = "کد پرسنلی الزامی است"
	MsgPersonnelCodeDigits    = "کد پرسنلی باید فقط شامل اعداد باشد"
	MsgPersianNameRequired    = "نام فارسی الزامی است"
	MsgEnglishNameRequired    = "نام انگلیسی الزامی است"
	MsgVoipRequired           = "شماره ویپ الزامی است"
	MsgVoipDigits             = "شماره ویپ باید فقط شامل اعداد باشد"
	MsgProjectRequired        = "پروژه الزامی است"
	MsgDepartmentRequired     = "بخش الزامی است"
	MsgPositionRequired       = "سمت الزامی است"
	MsgDuplicatePersonnelCode = "کد پرسنلی تکراری است"
	MsgDuplicateVoip          = "شماره ویپ تکراری است"
	MsgPersonnelAdded         = "پرسنل جدید با موفقیت اضافه شد"
	MsgPersonnelUpdated       = "اطلاعات پرسنل با موفقیت به‌روزرسانی شد"
	MsgPersonnelNotFound      = "پرسنل مورد نظر یافت نشد"
	MsgPersonnelDeleted       = "پرسنل با موفقیت حذف شد"
	MsgPersonnelBulkDeletedFt = "%d پرسنل حذف شد"
	MsgPersonnelCodeImmutable = "کد پرسنلی قابل تغییر نیست"
	MsgUpdateRequired         = "حداقل یک فیلد برای به‌روزرسانی لازم است"
	MsgStoreFailure           = "خطا در ارتباط با پایگاه داده"
	MsgNoPersonnelCodes       = "هیچ کد پرسنلی انتخاب نشده است"
	MsgInvalidPage            = "شماره صفحه نامعتبر است"
	MsgInvalidPageSize        = "تعداد آیتم در هر صفحه باید بین 1 تا 100 باشد"

	MsgFileTooLargeFmt    = "حجم فایل نباید بیشتر از %d مگابایت باشد"
	MsgFileEmpty          = "فایل خالی یا خراب است"
	MsgFileTypeNotAllowed = "فرمت فایل مجاز نیست. فرمت‌های مجاز: .csv, .xlsx, .xls"
	MsgFileNameNotAllowed = "نام فایل مجاز نیست"
	MsgFileInvalid        = "فایل نامعتبر است"
	MsgExcelNotSupported  = "فایل‌های Excel پشتیبانی نمی‌شوند. لطفاً فایل را با فرمت CSV ذخیره کنید."
	MsgImportTooFewLines  = "فایل باید حداقل یک ردیف هدر و یک ردیف داده داشته باشد"
	MsgImportMissingFmt   = "ستون‌های الزامی یافت نشد: %s"
	MsgImportSummaryFmt   = "%d پرسنل اضافه شد، %d به‌روزرسانی شد، %d رد شد."
	MsgImportFailed       = "خطا در پردازش فایل"
	MsgExportFailed       = "خطا در ایجاد فایل خروجی"
	MsgUploadRateLimited  = "تعداد آپلود بیش از حد مجاز است. لطفاً یک دقیقه صبر کنید."

	MsgSettingsUpdated = "تنظیمات با موفقیت به‌روزرسانی شد"
	MsgSettingsReset   = "تنظیمات به حالت پیش‌فرض بازگردانده شد"
	MsgSettingsInvalid = "مقادیر تنظیمات نامعتبر است"
	MsgImageInvalid    = "فایل تصویر معتبر نیست"
	MsgImageTooLarge   = "حجم فایل نباید بیشتر از ۵ مگابایت باشد"
	MsgImageTooWide    = "ابعاد تصویر نباید بیشتر از ۲۰۰۰ پیکسل باشد"
	MsgImageRequired   = "فایل باید تصویر باشد"
)
