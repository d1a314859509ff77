package bridge

// Command names understood by the native backends.
const (
	CmdIsAppActivated    = "is_app_activated"
	CmdIsSignedUp        = "is_signed_up"
	CmdIsSignedIn        = "is_signed_in"
	CmdIsSessionPinExist = "is_session_pin_exist"
	CmdAuthStatus        = "auth_status"

	CmdActivateApp        = "activate_app"
	CmdValidatePin        = "validate_pin"
	CmdValidateConfirmPin = "validate_confirm_pin"
	CmdValidateSeedWords  = "validate_seed_words"
	CmdGenerateMnemonic   = "generate_mnemonic"
	CmdSignup             = "signup"
	CmdSignin             = "signin"
	CmdSignout            = "signout"
	CmdReset              = "reset"

	CmdGetProfile                   = "get_profile"
	CmdUpdateProfile                = "update_profile"
	CmdUpdateRegisteredHospitalName = "update_registered_hospital_name"

	CmdGetHospitalPersonnels         = "get_hospital_personnels"
	CmdHospitalAdminAddActivationKey = "hospital_admin_add_activation_key"

	CmdGetAdministrativeData  = "get_administrative_data"
	CmdGetMedicalRecord       = "get_medical_record"
	CmdGetMedicalRecords      = "get_medical_records"
	CmdGetMedicalRecordUpdate = "get_medical_record_update"
	CmdNewMedicalRecord       = "new_medical_record"
	CmdUpdateMedicalRecord    = "update_medical_record"

	CmdGetReadAccessAdministrativePersonnel = "get_read_access_administrative_personnel"
	CmdGetReadAccessMedicalPersonnel        = "get_read_access_medical_personnel"
	CmdGetUpdateAccessMedicalPersonnel      = "get_update_access_medical_personnel"

	CmdGetAccessLog = "get_access_log"
	CmdRevokeAccess = "revoke_access"
	CmdProcessQR    = "process_qr"
	CmdCreateAccess = "create_access"

	CmdGetHospitals        = "get_hospitals"
	CmdCreateActivationKey = "create_activation_key"
	CmdUpdateActivationKey = "update_activation_key"
)

// AuthType scopes PIN validation to the flow that collects it.
type AuthType string

const (
	AuthSignin  AuthType = "Signin"
	AuthSignup  AuthType = "Signup"
	AuthSession AuthType = "Session"
)
